package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/service/cache"
	"MacroPulse/pkg/logger"
)

// SeriesQuery serves read queries over the aligned store with a short TTL
// cache in front.
type SeriesQuery struct {
	store drepo.SeriesStore
	cache cache.BytesCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewSeriesQuery(store drepo.SeriesStore, c cache.BytesCache, ttl time.Duration, log *logger.Logger) *SeriesQuery {
	return &SeriesQuery{store: store, cache: c, ttl: ttl, log: log}
}

// Aligned returns aligned rows for one indicator in [from, to].
func (s *SeriesQuery) Aligned(ctx context.Context, ind drepo.Indicator, from, to time.Time, limit int) ([]models.AlignedRow, error) {
	key := fmt.Sprintf("aligned:%s:%d:%d:%d", ind, from.Unix(), to.Unix(), limit)
	if b, ok := s.cacheGet(key); ok {
		var rows []models.AlignedRow
		if err := json.Unmarshal(b, &rows); err == nil {
			return rows, nil
		}
	}

	rows, err := s.store.QueryAligned(ctx, ind, from, to, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(key, rows)
	return rows, nil
}

// Sentiment returns hourly sentiment buckets for one subject in [from, to].
func (s *SeriesQuery) Sentiment(ctx context.Context, subject string, from, to time.Time, limit int) ([]models.SentimentBucket, error) {
	key := fmt.Sprintf("sentiment:%s:%d:%d:%d", subject, from.Unix(), to.Unix(), limit)
	if b, ok := s.cacheGet(key); ok {
		var buckets []models.SentimentBucket
		if err := json.Unmarshal(b, &buckets); err == nil {
			return buckets, nil
		}
	}

	buckets, err := s.store.QuerySentiment(ctx, subject, from, to, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(key, buckets)
	return buckets, nil
}

// Health reports store availability.
func (s *SeriesQuery) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

func (s *SeriesQuery) cacheGet(key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	b, ok, err := s.cache.GetBytes(key)
	if err != nil {
		s.log.Warn("cache get failed", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	return b, ok
}

func (s *SeriesQuery) cacheSet(key string, v interface{}) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.SetBytes(key, b, s.ttl); err != nil {
		s.log.Warn("cache set failed", logger.String("key", key), logger.Error(err))
	}
}
