package models

import (
	"encoding/json"
	"math"
	"time"
)

// SentimentRecord is one article-level sentiment row for one subject (ticker).
// Score fields use NaN when the provider omitted the field.
type SentimentRecord struct {
	Subject     string
	PublishedAt time.Time
	Overall     float64 // article-level sentiment score
	Score       float64 // subject-specific sentiment score
	Relevance   float64 // subject relevance score
}

// SentimentBucket is the hourly aggregate for one (subject, hour) cell.
// Mean fields are NaN when no record contributed a value for that field —
// "no news" must stay distinguishable from "news with mean 0".
type SentimentBucket struct {
	Subject       string
	Hour          time.Time
	Count         int
	OverallMean   float64
	ScoreMean     float64
	RelevanceMean float64
}

// HasSentiment reports whether any mean field carries a value.
func (b SentimentBucket) HasSentiment() bool {
	return !math.IsNaN(b.OverallMean) || !math.IsNaN(b.ScoreMean) || !math.IsNaN(b.RelevanceMean)
}

// bucketJSON is the wire shape: absent means serialize as null, not NaN.
type bucketJSON struct {
	Subject       string    `json:"subject"`
	Hour          time.Time `json:"datetime"`
	Count         int       `json:"article_count"`
	OverallMean   *float64  `json:"overall_mean"`
	ScoreMean     *float64  `json:"score_mean"`
	RelevanceMean *float64  `json:"relevance_mean"`
}

func (b SentimentBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(bucketJSON{
		Subject:       b.Subject,
		Hour:          b.Hour,
		Count:         b.Count,
		OverallMean:   nanToNil(b.OverallMean),
		ScoreMean:     nanToNil(b.ScoreMean),
		RelevanceMean: nanToNil(b.RelevanceMean),
	})
}

func (b *SentimentBucket) UnmarshalJSON(data []byte) error {
	var w bucketJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.Subject = w.Subject
	b.Hour = w.Hour
	b.Count = w.Count
	b.OverallMean = nilToNaN(w.OverallMean)
	b.ScoreMean = nilToNaN(w.ScoreMean)
	b.RelevanceMean = nilToNaN(w.RelevanceMean)
	return nil
}

func nanToNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func nilToNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
