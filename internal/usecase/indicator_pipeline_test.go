package usecase

import (
	"context"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	applogger "MacroPulse/pkg/logger"
)

type fakeSource struct {
	observations []models.Observation
	initials     []models.Observation
}

func (f *fakeSource) Observations(ctx context.Context, seriesID string) ([]models.Observation, error) {
	return f.observations, nil
}

func (f *fakeSource) InitialReleases(ctx context.Context, seriesID string) ([]models.Observation, error) {
	return f.initials, nil
}

type fakeStore struct {
	timeline []time.Time
	aligned  []models.AlignedRow
}

func (f *fakeStore) HourlyTimeline(ctx context.Context, symbol string, from, to time.Time) ([]time.Time, error) {
	return f.timeline, nil
}

func (f *fakeStore) Init(ctx context.Context) error { return nil }

func (f *fakeStore) StoreAligned(ctx context.Context, rows []models.AlignedRow) error {
	f.aligned = append(f.aligned, rows...)
	return nil
}

func (f *fakeStore) QueryAligned(ctx context.Context, ind drepo.Indicator, from, to time.Time, limit int) ([]models.AlignedRow, error) {
	return f.aligned, nil
}

func (f *fakeStore) StoreSentiment(ctx context.Context, buckets []models.SentimentBucket) error {
	return nil
}

func (f *fakeStore) QuerySentiment(ctx context.Context, subject string, from, to time.Time, limit int) ([]models.SentimentBucket, error) {
	return nil, nil
}

func (f *fakeStore) Health(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                     { return nil }

type fakePublisher struct {
	published []models.AlignedRow
}

func (f *fakePublisher) PublishAligned(ctx context.Context, rows []models.AlignedRow) error {
	f.published = append(f.published, rows...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	rows    int
	dropped int
	errors  int
}

func (f *fakeMetrics) RecordRowsAligned(indicator string, n int)         { f.rows += n }
func (f *fakeMetrics) RecordObservationsDropped(indicator string, n int) { f.dropped += n }
func (f *fakeMetrics) RecordError(kind string)                           { f.errors++ }
func (f *fakeMetrics) RecordLatency(op string, seconds float64)          {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRunFedFundsStoresBackfilledRows(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	source := &fakeSource{observations: []models.Observation{
		{AsOfDate: date(2023, 6, 1), Value: 5.25},
		{AsOfDate: date(2023, 6, 2), Value: 5.25},
		{AsOfDate: date(2023, 6, 14), Value: 5.50},
	}}
	store := &fakeStore{timeline: []time.Time{
		// before the first 14:00 ET decision, after it, and after the hike
		time.Date(2023, 6, 1, 13, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 1, 19, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 15, 13, 0, 0, 0, time.UTC),
	}}
	m := &fakeMetrics{}

	p := NewIndicatorPipeline(source, store, store, nil, m, testLogger(t), "SPY", ny)
	res, err := p.Run(context.Background(), drepo.IndFedFunds, date(2023, 6, 1), date(2023, 6, 30))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Rows != 3 {
		t.Fatalf("rows = %d, want 3", res.Rows)
	}
	if len(res.AllAbsent) != 0 {
		t.Fatalf("unexpected all-absent columns: %v", res.AllAbsent)
	}
	if m.rows != 3 || m.errors != 0 {
		t.Fatalf("metrics rows=%d errors=%d", m.rows, m.errors)
	}

	want := []float64{5.25, 5.25, 5.50}
	for i, row := range store.aligned {
		if row.Indicator != "fedfunds" || row.Column != "Fed_Funds_Rate" {
			t.Fatalf("row %d identity = %s/%s", i, row.Indicator, row.Column)
		}
		if row.Value == nil || *row.Value != want[i] {
			t.Fatalf("row %d value = %v, want %v", i, row.Value, want[i])
		}
	}
	// The first hour precedes the 14:00 ET decision; backfill carries the
	// first value there rather than leaving it absent.
	if !store.aligned[0].At.Equal(store.timeline[0]) {
		t.Fatalf("row order lost: %v", store.aligned[0].At)
	}
}

func TestRunCPIProducesBothColumns(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")

	var obs []models.Observation
	for i := 0; i < 14; i++ {
		obs = append(obs, models.Observation{
			AsOfDate: date(2022, time.Month(1), 1).AddDate(0, i, 0),
			Value:    100 + float64(i),
		})
	}
	source := &fakeSource{observations: obs}
	store := &fakeStore{timeline: []time.Time{
		time.Date(2023, 4, 3, 14, 0, 0, 0, time.UTC),
		time.Date(2023, 4, 3, 15, 0, 0, 0, time.UTC),
	}}
	m := &fakeMetrics{}

	p := NewIndicatorPipeline(source, store, store, nil, m, testLogger(t), "SPY", ny)
	res, err := p.Run(context.Background(), drepo.IndCPI, date(2023, 4, 1), date(2023, 4, 30))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// two timeline hours times two derived columns
	if res.Rows != 4 {
		t.Fatalf("rows = %d, want 4", res.Rows)
	}
	cols := map[string]int{}
	for _, row := range store.aligned {
		cols[row.Column]++
	}
	if cols["CPI_YoY"] != 2 || cols["CPI_MoM"] != 2 {
		t.Fatalf("column spread = %v", cols)
	}
}

func TestRunGDPUsesInitialReleases(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")

	early := time.Date(2023, 4, 27, 12, 30, 0, 0, time.UTC)
	late := time.Date(2023, 5, 25, 12, 30, 0, 0, time.UTC)
	source := &fakeSource{initials: []models.Observation{
		{AsOfDate: date(2023, 1, 1), Value: 1.1, Vintage: &early},
		{AsOfDate: date(2023, 1, 1), Value: 1.3, Vintage: &late}, // revision, must lose
	}}
	store := &fakeStore{timeline: []time.Time{
		time.Date(2023, 4, 27, 13, 0, 0, 0, time.UTC),
	}}
	m := &fakeMetrics{}

	p := NewIndicatorPipeline(source, store, store, nil, m, testLogger(t), "SPY", ny)
	if _, err := p.Run(context.Background(), drepo.IndGDP, date(2023, 4, 1), date(2023, 5, 31)); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(store.aligned) != 1 {
		t.Fatalf("rows = %d, want 1", len(store.aligned))
	}
	if v := store.aligned[0].Value; v == nil || *v != 1.1 {
		t.Fatalf("value = %v, want the initial release 1.1", v)
	}
}

func TestRunPrefersPublisherOverStore(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")

	source := &fakeSource{observations: []models.Observation{
		{AsOfDate: date(2023, 6, 1), Value: 5.25},
	}}
	store := &fakeStore{timeline: []time.Time{
		time.Date(2023, 6, 1, 19, 0, 0, 0, time.UTC),
	}}
	pub := &fakePublisher{}
	m := &fakeMetrics{}

	p := NewIndicatorPipeline(source, store, store, pub, m, testLogger(t), "SPY", ny)
	if _, err := p.Run(context.Background(), drepo.IndFedFunds, date(2023, 6, 1), date(2023, 6, 2)); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published = %d, want 1", len(pub.published))
	}
	if len(store.aligned) != 0 {
		t.Fatalf("store must not receive rows when a publisher is configured")
	}
}

func TestRunUnknownIndicator(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")
	m := &fakeMetrics{}
	p := NewIndicatorPipeline(&fakeSource{}, &fakeStore{}, &fakeStore{}, nil, m, testLogger(t), "SPY", ny)

	if _, err := p.Run(context.Background(), drepo.Indicator("bogus"), date(2023, 1, 1), date(2023, 2, 1)); err == nil {
		t.Fatalf("expected error for unknown indicator")
	}
	if m.errors != 1 {
		t.Fatalf("errors = %d, want 1", m.errors)
	}
}
