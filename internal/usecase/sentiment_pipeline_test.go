package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
)

type fakeNews struct {
	records map[string][]models.SentimentRecord
	err     error
}

func (f *fakeNews) Sentiment(ctx context.Context, subject string, from, to time.Time) ([]models.SentimentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[subject], nil
}

type sentimentCapture struct {
	fakeStore
	buckets []models.SentimentBucket
}

func (s *sentimentCapture) StoreSentiment(ctx context.Context, buckets []models.SentimentBucket) error {
	s.buckets = append(s.buckets, buckets...)
	return nil
}

func TestSentimentRunAggregatesPerSubject(t *testing.T) {
	from := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 2, 1, 2, 0, 0, 0, time.UTC)

	news := &fakeNews{records: map[string][]models.SentimentRecord{
		"AAPL": {
			{Subject: "AAPL", PublishedAt: from.Add(10 * time.Minute), Overall: 0.4, Score: 0.2, Relevance: 0.9},
			{Subject: "AAPL", PublishedAt: from.Add(50 * time.Minute), Overall: 0.6, Score: 0.4, Relevance: 0.7},
		},
	}}
	store := &sentimentCapture{}
	m := &fakeMetrics{}

	p := NewSentimentPipeline(news, store, m, testLogger(t))
	res, err := p.Run(context.Background(), []string{"AAPL"}, from, to)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// three grid hours for the subject
	if res.Buckets != 3 || res.Articles != 2 {
		t.Fatalf("buckets=%d articles=%d", res.Buckets, res.Articles)
	}

	first := store.buckets[0]
	if first.Count != 2 {
		t.Fatalf("first hour count = %d, want 2", first.Count)
	}
	if first.OverallMean != 0.5 {
		t.Fatalf("overall mean = %v, want 0.5", first.OverallMean)
	}
	for _, b := range store.buckets[1:] {
		if b.Count != 0 || b.HasSentiment() {
			t.Fatalf("empty hour must have count 0 and absent means, got %+v", b)
		}
	}
}

func TestSentimentRunAllSubjectsFailed(t *testing.T) {
	news := &fakeNews{err: errors.New("throttled")}
	store := &sentimentCapture{}
	m := &fakeMetrics{}

	p := NewSentimentPipeline(news, store, m, testLogger(t))
	from := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := p.Run(context.Background(), []string{"AAPL", "MSFT"}, from, from.Add(time.Hour)); err == nil {
		t.Fatalf("expected error when every subject fails")
	}
	if m.errors != 2 {
		t.Fatalf("errors = %d, want 2", m.errors)
	}
}
