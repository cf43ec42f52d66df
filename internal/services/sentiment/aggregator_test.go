package sentiment

import (
	"errors"
	"math"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/services/align"
)

func hour(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAggregateBucketsAndMeans(t *testing.T) {
	grid := HourlyGrid(hour("2023-05-01T10:00:00Z"), hour("2023-05-01T12:00:00Z"))
	records := []models.SentimentRecord{
		{Subject: "AAPL", PublishedAt: hour("2023-05-01T10:05:00Z"), Overall: 0.2, Score: 0.4, Relevance: 0.9},
		{Subject: "AAPL", PublishedAt: hour("2023-05-01T10:59:59Z"), Overall: 0.4, Score: 0.2, Relevance: 0.5},
		{Subject: "AAPL", PublishedAt: hour("2023-05-01T12:00:00Z"), Overall: -0.1, Score: -0.3, Relevance: 0.7},
	}
	buckets, err := Aggregate(records, grid)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(buckets) != 3 {
		t.Fatalf("want one bucket per grid hour, got %d", len(buckets))
	}
	b10 := buckets[0]
	if b10.Count != 2 {
		t.Fatalf("10:00 bucket count = %d, want 2", b10.Count)
	}
	if math.Abs(b10.OverallMean-0.3) > 1e-12 || math.Abs(b10.ScoreMean-0.3) > 1e-12 {
		t.Fatalf("10:00 means wrong: %+v", b10)
	}
	if buckets[2].Count != 1 || buckets[2].OverallMean != -0.1 {
		t.Fatalf("12:00 bucket wrong: %+v", buckets[2])
	}
}

func TestAggregateEmptyHourAbsentNotZero(t *testing.T) {
	grid := HourlyGrid(hour("2023-05-01T10:00:00Z"), hour("2023-05-01T11:00:00Z"))
	records := []models.SentimentRecord{
		{Subject: "TSLA", PublishedAt: hour("2023-05-01T10:30:00Z"), Overall: 0.5, Score: 0.5, Relevance: 0.5},
	}
	buckets, err := Aggregate(records, grid)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	empty := buckets[1]
	if empty.Count != 0 {
		t.Fatalf("empty hour count = %d, want 0", empty.Count)
	}
	if empty.HasSentiment() {
		t.Fatalf("empty hour means must be absent, never 0.0: %+v", empty)
	}
}

func TestAggregatePartialFields(t *testing.T) {
	grid := HourlyGrid(hour("2023-05-01T10:00:00Z"), hour("2023-05-01T10:00:00Z"))
	records := []models.SentimentRecord{
		{Subject: "MSFT", PublishedAt: hour("2023-05-01T10:10:00Z"), Overall: 0.6, Score: math.NaN(), Relevance: math.NaN()},
		{Subject: "MSFT", PublishedAt: hour("2023-05-01T10:20:00Z"), Overall: 0.2, Score: 0.8, Relevance: math.NaN()},
	}
	buckets, err := Aggregate(records, grid)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	b := buckets[0]
	if b.Count != 2 {
		t.Fatalf("count = %d, want 2", b.Count)
	}
	if math.Abs(b.OverallMean-0.4) > 1e-12 {
		t.Fatalf("overall mean over both records, got %v", b.OverallMean)
	}
	if b.ScoreMean != 0.8 {
		t.Fatalf("score mean must skip missing values, got %v", b.ScoreMean)
	}
	if !math.IsNaN(b.RelevanceMean) {
		t.Fatalf("relevance mean must stay absent, got %v", b.RelevanceMean)
	}
}

func TestAggregateSubjectsSeparateAndSorted(t *testing.T) {
	grid := HourlyGrid(hour("2023-05-01T10:00:00Z"), hour("2023-05-01T10:00:00Z"))
	records := []models.SentimentRecord{
		{Subject: "TSLA", PublishedAt: hour("2023-05-01T10:30:00Z"), Overall: 1, Score: 1, Relevance: 1},
		{Subject: "AAPL", PublishedAt: hour("2023-05-01T10:30:00Z"), Overall: -1, Score: -1, Relevance: -1},
	}
	buckets, err := Aggregate(records, grid)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("want one row per subject per hour, got %d", len(buckets))
	}
	if buckets[0].Subject != "AAPL" || buckets[1].Subject != "TSLA" {
		t.Fatalf("subjects must come out sorted: %s, %s", buckets[0].Subject, buckets[1].Subject)
	}
}

func TestAggregateRecordsOffGridIgnored(t *testing.T) {
	grid := HourlyGrid(hour("2023-05-01T10:00:00Z"), hour("2023-05-01T10:00:00Z"))
	records := []models.SentimentRecord{
		{Subject: "AAPL", PublishedAt: hour("2023-05-02T09:00:00Z"), Overall: 1, Score: 1, Relevance: 1},
	}
	buckets, err := Aggregate(records, grid)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(buckets) != 0 {
		t.Fatalf("off-grid record must not create buckets, got %d", len(buckets))
	}
}

func TestAggregateInvalidGrid(t *testing.T) {
	bad := []time.Time{hour("2023-05-01T11:00:00Z"), hour("2023-05-01T10:00:00Z")}
	if _, err := Aggregate(nil, bad); !errors.Is(err, align.ErrInvalidOrdering) {
		t.Fatalf("want ErrInvalidOrdering, got %v", err)
	}
}

func TestHourlyGrid(t *testing.T) {
	grid := HourlyGrid(hour("2023-05-01T10:15:00Z"), hour("2023-05-01T13:45:00Z"))
	if len(grid) != 4 {
		t.Fatalf("want 4 hours, got %d", len(grid))
	}
	if !grid[0].Equal(hour("2023-05-01T10:00:00Z")) || !grid[3].Equal(hour("2023-05-01T13:00:00Z")) {
		t.Fatalf("grid bounds wrong: %v .. %v", grid[0], grid[3])
	}
	if HourlyGrid(hour("2023-05-02T00:00:00Z"), hour("2023-05-01T00:00:00Z")) != nil {
		t.Fatalf("inverted range yields nil grid")
	}
}
