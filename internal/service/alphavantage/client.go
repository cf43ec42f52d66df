package alphavantage

import (
	"context"
	"math"
	"strconv"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/service/ratelimit"
	phttp "MacroPulse/pkg/http"
	"MacroPulse/pkg/logger"
)

const (
	timeLayout = "20060102T150405"
	stampShort = "20060102T1504"

	// One request per window; the free tier allows 75 per minute but bursts
	// get throttled, so pace well under that.
	rateKey       = "alphavantage"
	rateCapacity  = 5
	ratePerSecond = 1

	maxArticlesPerCall = 1000
)

// Client fetches article-level news sentiment from Alpha Vantage.
type Client struct {
	baseURL string
	apiKey  string
	window  time.Duration
	http    *phttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

// New creates a NewsSource backed by the NEWS_SENTIMENT endpoint. The
// requested range is fetched in rolling windows of the given size.
func New(baseURL, apiKey string, timeout, window time.Duration, limiter *ratelimit.Limiter, log *logger.Logger) drepo.NewsSource {
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		window:  window,
		http:    phttp.NewClient(phttp.WithTimeout(timeout)),
		limiter: limiter,
		log:     log,
	}
}

type avTickerSentiment struct {
	Ticker         string `json:"ticker"`
	RelevanceScore string `json:"relevance_score"`
	SentimentScore string `json:"ticker_sentiment_score"`
}

type avArticle struct {
	TimePublished         string              `json:"time_published"`
	OverallSentimentScore *float64            `json:"overall_sentiment_score"`
	TickerSentiment       []avTickerSentiment `json:"ticker_sentiment"`
}

type avResponse struct {
	Feed []avArticle `json:"feed"`
}

// Sentiment returns article records for subject within [from, to]. A window
// that fails to fetch is skipped with a warning rather than failing the batch.
func (c *Client) Sentiment(ctx context.Context, subject string, from, to time.Time) ([]models.SentimentRecord, error) {
	var out []models.SentimentRecord

	for start := from; start.Before(to); start = start.Add(c.window) {
		end := start.Add(c.window)
		if end.After(to) {
			end = to
		}

		if err := c.limiter.Wait(ctx, rateKey, rateCapacity, ratePerSecond); err != nil {
			return nil, err
		}

		feed, err := c.fetchWindow(ctx, subject, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("alphavantage: window fetch failed, skipping",
				logger.String("subject", subject),
				logger.String("from", start.Format(time.RFC3339)),
				logger.String("to", end.Format(time.RFC3339)),
				logger.Error(err))
			continue
		}
		out = append(out, c.convert(subject, feed)...)
	}

	return out, nil
}

func (c *Client) fetchWindow(ctx context.Context, subject string, from, to time.Time) ([]avArticle, error) {
	var resp avResponse
	err := c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    c.baseURL + "/query",
		QueryParams: map[string][]string{
			"function":  {"NEWS_SENTIMENT"},
			"tickers":   {subject},
			"time_from": {from.UTC().Format(stampShort)},
			"time_to":   {to.UTC().Format(stampShort)},
			"sort":      {"EARLIEST"},
			"limit":     {strconv.Itoa(maxArticlesPerCall)},
			"apikey":    {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Feed, nil
}

func (c *Client) convert(subject string, feed []avArticle) []models.SentimentRecord {
	out := make([]models.SentimentRecord, 0, len(feed))
	for _, a := range feed {
		at, err := time.Parse(timeLayout, a.TimePublished)
		if err != nil {
			c.log.Warn("alphavantage: skipping article with bad timestamp",
				logger.String("subject", subject),
				logger.String("time_published", a.TimePublished))
			continue
		}

		rec := models.SentimentRecord{
			Subject:     subject,
			PublishedAt: at.UTC(),
			Overall:     math.NaN(),
			Score:       math.NaN(),
			Relevance:   math.NaN(),
		}
		if a.OverallSentimentScore != nil {
			rec.Overall = *a.OverallSentimentScore
		}
		for _, ts := range a.TickerSentiment {
			if ts.Ticker != subject {
				continue
			}
			rec.Score = parseScore(ts.SentimentScore)
			rec.Relevance = parseScore(ts.RelevanceScore)
			break
		}
		out = append(out, rec)
	}
	return out
}

func parseScore(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
