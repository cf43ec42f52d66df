package usecase

import (
	"context"
	"fmt"
	"time"

	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/services/sentiment"
	"MacroPulse/pkg/logger"
)

// SentimentRunResult summarizes one sentiment aggregation run.
type SentimentRunResult struct {
	Subjects []string `json:"subjects"`
	Buckets  int      `json:"buckets"`
	Articles int      `json:"articles"`
}

// SentimentPipeline fetches article sentiment and aggregates it into the
// hourly buckets the store serves.
type SentimentPipeline struct {
	news    drepo.NewsSource
	store   drepo.SeriesStore
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewSentimentPipeline(news drepo.NewsSource, store drepo.SeriesStore, metrics drepo.Metrics, log *logger.Logger) *SentimentPipeline {
	return &SentimentPipeline{news: news, store: store, metrics: metrics, log: log}
}

// Run aggregates sentiment for the given subjects over [from, to]. A subject
// whose fetch fails is skipped; the run fails only when every subject fails.
func (p *SentimentPipeline) Run(ctx context.Context, subjects []string, from, to time.Time) (*SentimentRunResult, error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordLatency("sentiment_run", time.Since(start).Seconds())
	}()

	grid := sentiment.HourlyGrid(from, to)
	if len(grid) == 0 {
		return nil, fmt.Errorf("empty range: from=%s to=%s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	result := &SentimentRunResult{}
	var failed int
	for _, subject := range subjects {
		records, err := p.news.Sentiment(ctx, subject, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			p.metrics.RecordError("sentiment_fetch")
			p.log.Warn("sentiment fetch failed, skipping subject",
				logger.String("subject", subject),
				logger.Error(err))
			continue
		}

		buckets, err := sentiment.Aggregate(records, grid)
		if err != nil {
			p.metrics.RecordError("sentiment_aggregate")
			return nil, fmt.Errorf("aggregate %s: %w", subject, err)
		}

		if err := p.store.StoreSentiment(ctx, buckets); err != nil {
			p.metrics.RecordError("sentiment_store")
			return nil, fmt.Errorf("store sentiment %s: %w", subject, err)
		}

		result.Subjects = append(result.Subjects, subject)
		result.Buckets += len(buckets)
		result.Articles += len(records)
	}

	if failed == len(subjects) && len(subjects) > 0 {
		return nil, fmt.Errorf("all %d subjects failed to fetch", failed)
	}

	p.log.Info("sentiment aggregated",
		logger.Strings("subjects", result.Subjects),
		logger.Int("buckets", result.Buckets),
		logger.Int("articles", result.Articles),
		logger.Duration("elapsed", time.Since(start)))
	return result, nil
}
