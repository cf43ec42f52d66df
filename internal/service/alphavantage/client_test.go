package alphavantage

import (
	"math"
	"testing"
	"time"

	applogger "MacroPulse/pkg/logger"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &Client{log: l}
}

func fptr(v float64) *float64 { return &v }

func TestConvertPicksSubjectScores(t *testing.T) {
	c := testClient(t)
	out := c.convert("AAPL", []avArticle{
		{
			TimePublished:         "20230203T133005",
			OverallSentimentScore: fptr(0.31),
			TickerSentiment: []avTickerSentiment{
				{Ticker: "MSFT", SentimentScore: "0.9", RelevanceScore: "0.8"},
				{Ticker: "AAPL", SentimentScore: "0.25", RelevanceScore: "0.6"},
			},
		},
	})

	if len(out) != 1 {
		t.Fatalf("want 1 record, got %d", len(out))
	}
	r := out[0]
	if !r.PublishedAt.Equal(time.Date(2023, 2, 3, 13, 30, 5, 0, time.UTC)) {
		t.Fatalf("published = %v", r.PublishedAt)
	}
	if r.Overall != 0.31 || r.Score != 0.25 || r.Relevance != 0.6 {
		t.Fatalf("scores = %v %v %v", r.Overall, r.Score, r.Relevance)
	}
}

func TestConvertMissingFieldsAreNaN(t *testing.T) {
	c := testClient(t)
	out := c.convert("AAPL", []avArticle{
		{TimePublished: "20230203T133005"},
		{TimePublished: "garbage"},
	})

	if len(out) != 1 {
		t.Fatalf("bad timestamps must be skipped, got %d records", len(out))
	}
	r := out[0]
	if !math.IsNaN(r.Overall) || !math.IsNaN(r.Score) || !math.IsNaN(r.Relevance) {
		t.Fatalf("missing fields must be NaN, got %v %v %v", r.Overall, r.Score, r.Relevance)
	}
}
