package repository

import (
	"context"
	"time"

	"MacroPulse/internal/domain/models"
)

// TimelineSource provides the trading-hour grid the aligner consumes. The
// timeline is read-only input: ascending, deduplicated UTC instants, one per
// hour for which the companion market series has a price.
type TimelineSource interface {
	HourlyTimeline(ctx context.Context, symbol string, from, to time.Time) ([]time.Time, error)
}

// ObservationSource fetches raw indicator observations from the statistics
// provider. Retries and rate limiting live behind this boundary, never in the core.
type ObservationSource interface {
	// Observations returns the plain (latest-vintage) series.
	Observations(ctx context.Context, seriesID string) ([]models.Observation, error)
	// InitialReleases returns first-release vintages, one Observation per
	// (as-of date, vintage instant) pair.
	InitialReleases(ctx context.Context, seriesID string) ([]models.Observation, error)
}

// NewsSource fetches article-level sentiment rows for one subject.
type NewsSource interface {
	Sentiment(ctx context.Context, subject string, from, to time.Time) ([]models.SentimentRecord, error)
}

// SeriesStore persists and serves aligned hourly output.
type SeriesStore interface {
	Init(ctx context.Context) error
	StoreAligned(ctx context.Context, rows []models.AlignedRow) error
	QueryAligned(ctx context.Context, ind Indicator, from, to time.Time, limit int) ([]models.AlignedRow, error)
	StoreSentiment(ctx context.Context, buckets []models.SentimentBucket) error
	QuerySentiment(ctx context.Context, subject string, from, to time.Time, limit int) ([]models.SentimentBucket, error)
	Health(ctx context.Context) error
	Close() error
}

// SeriesPublisher pushes aligned rows to a message backend instead of storage.
type SeriesPublisher interface {
	PublishAligned(ctx context.Context, rows []models.AlignedRow) error
	Close() error
}

type Metrics interface {
	RecordRowsAligned(indicator string, n int)
	RecordObservationsDropped(indicator string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
