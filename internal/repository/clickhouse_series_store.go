package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
)

// Table layout. Aligned output is stored long-format: one row per
// (indicator, metric, hour), NULL for absent points.
const (
	TableCandles   = "market_candles_1h"
	TableAligned   = "macro_hourly"
	TableSentiment = "news_sentiment_1h"
)

// SchemaStatements returns idempotent DDL for the store's tables.
func SchemaStatements() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			symbol LowCardinality(String),
			dt DateTime('UTC'),
			close Float64
		) ENGINE = ReplacingMergeTree
		ORDER BY (symbol, dt)`, TableCandles),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			indicator LowCardinality(String),
			metric LowCardinality(String),
			dt DateTime('UTC'),
			value Nullable(Float64)
		) ENGINE = ReplacingMergeTree
		ORDER BY (indicator, metric, dt)`, TableAligned),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			subject LowCardinality(String),
			dt DateTime('UTC'),
			article_count UInt32,
			overall_mean Nullable(Float64),
			score_mean Nullable(Float64),
			relevance_mean Nullable(Float64)
		) ENGINE = ReplacingMergeTree
		ORDER BY (subject, dt)`, TableSentiment),
	}
}

// ClickHouseSeriesStore implements SeriesStore and TimelineSource on ClickHouse.
type ClickHouseSeriesStore struct {
	db *sql.DB
}

func NewClickHouseSeriesStore(db *sql.DB) *ClickHouseSeriesStore {
	return &ClickHouseSeriesStore{db: db}
}

func (s *ClickHouseSeriesStore) Init(ctx context.Context) error {
	for _, stmt := range SchemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// HourlyTimeline returns the distinct candle hours for symbol in [from, to],
// ascending. These are the only hours the aligner produces values for.
func (s *ClickHouseSeriesStore) HourlyTimeline(ctx context.Context, symbol string, from, to time.Time) ([]time.Time, error) {
	q := fmt.Sprintf("SELECT DISTINCT dt FROM %s WHERE symbol = ? AND dt >= ? AND dt <= ? ORDER BY dt ASC", TableCandles)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var dt time.Time
		if err := rows.Scan(&dt); err != nil {
			return nil, err
		}
		out = append(out, dt.UTC())
	}
	return out, rows.Err()
}

func (s *ClickHouseSeriesStore) StoreAligned(ctx context.Context, aligned []models.AlignedRow) error {
	if len(aligned) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(aligned); start += chunkSize {
		end := start + chunkSize
		if end > len(aligned) {
			end = len(aligned)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, r := range aligned[start:end] {
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, r.Indicator, r.Column, r.At.UTC(), r.Value)
		}
		q := fmt.Sprintf("INSERT INTO %s (indicator, metric, dt, value) VALUES %s",
			TableAligned, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert aligned: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseSeriesStore) QueryAligned(ctx context.Context, ind drepo.Indicator, from, to time.Time, limit int) ([]models.AlignedRow, error) {
	q := fmt.Sprintf("SELECT indicator, metric, dt, value FROM %s FINAL WHERE indicator = ? AND dt >= ? AND dt <= ? ORDER BY metric, dt ASC LIMIT ?", TableAligned)
	rows, err := s.db.QueryContext(ctx, q, string(ind), from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query aligned: %w", err)
	}
	defer rows.Close()

	var out []models.AlignedRow
	for rows.Next() {
		var r models.AlignedRow
		var dt time.Time
		if err := rows.Scan(&r.Indicator, &r.Column, &dt, &r.Value); err != nil {
			return nil, err
		}
		r.At = dt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseSeriesStore) StoreSentiment(ctx context.Context, buckets []models.SentimentBucket) error {
	if len(buckets) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(buckets); start += chunkSize {
		end := start + chunkSize
		if end > len(buckets) {
			end = len(buckets)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, b := range buckets[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				b.Subject,
				b.Hour.UTC(),
				uint32(b.Count),
				nullableFloat(b.OverallMean),
				nullableFloat(b.ScoreMean),
				nullableFloat(b.RelevanceMean),
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (subject, dt, article_count, overall_mean, score_mean, relevance_mean) VALUES %s",
			TableSentiment, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert sentiment: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseSeriesStore) QuerySentiment(ctx context.Context, subject string, from, to time.Time, limit int) ([]models.SentimentBucket, error) {
	q := fmt.Sprintf("SELECT subject, dt, article_count, overall_mean, score_mean, relevance_mean FROM %s FINAL WHERE subject = ? AND dt >= ? AND dt <= ? ORDER BY dt ASC LIMIT ?", TableSentiment)
	rows, err := s.db.QueryContext(ctx, q, subject, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query sentiment: %w", err)
	}
	defer rows.Close()

	var out []models.SentimentBucket
	for rows.Next() {
		var b models.SentimentBucket
		var dt time.Time
		var count uint32
		var overall, score, relevance sql.NullFloat64
		if err := rows.Scan(&b.Subject, &dt, &count, &overall, &score, &relevance); err != nil {
			return nil, err
		}
		b.Hour = dt.UTC()
		b.Count = int(count)
		b.OverallMean = floatOrNaN(overall)
		b.ScoreMean = floatOrNaN(score)
		b.RelevanceMean = floatOrNaN(relevance)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *ClickHouseSeriesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSeriesStore) Close() error {
	return nil // pool owned by pkg/clickhouse
}

// nullableFloat maps the internal NaN marker to a SQL NULL.
func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
