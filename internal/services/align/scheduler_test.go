package align

import (
	"math"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
)

func nyc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduleFixedDayWeekendRoll(t *testing.T) {
	// 2023-06-10 is a Saturday; the release must roll forward to Monday the 12th.
	p := NewNextPeriodFixedDay(10, nyc(t))
	events, stats, err := Schedule([]models.Observation{{AsOfDate: date(2023, time.May, 1), Value: 3.1}}, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if stats.Dropped != 0 || len(events) != 1 {
		t.Fatalf("unexpected stats %+v events %d", stats, len(events))
	}
	want := time.Date(2023, time.June, 12, 12, 30, 0, 0, time.UTC) // 08:30 EDT
	if !events[0].ReleaseAt.Equal(want) {
		t.Fatalf("release at %s, want %s", events[0].ReleaseAt, want)
	}
}

func TestScheduleFixedDayDST(t *testing.T) {
	p := NewNextPeriodFixedDay(10, nyc(t))
	obs := []models.Observation{
		{AsOfDate: date(2023, time.January, 1), Value: 6.4}, // release Feb 10, EST
		{AsOfDate: date(2023, time.June, 1), Value: 3.0},    // release Jul 10, EDT
	}
	events, _, err := Schedule(obs, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if got, want := events[0].ReleaseAt, time.Date(2023, time.February, 10, 13, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("EST release %s, want %s", got, want)
	}
	if got, want := events[1].ReleaseAt, time.Date(2023, time.July, 10, 12, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("EDT release %s, want %s", got, want)
	}
}

func TestScheduleYearRollover(t *testing.T) {
	p := NewNextPeriodFixedDay(10, nyc(t))
	events, _, err := Schedule([]models.Observation{{AsOfDate: date(2023, time.December, 1), Value: 3.4}}, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if got := events[0].ReleaseAt; got.Year() != 2024 || got.Month() != time.January {
		t.Fatalf("december observation must release in january, got %s", got)
	}
}

func TestScheduleFirstWeekday(t *testing.T) {
	p := NewNextPeriodFirstWeekday(time.Friday, nyc(t))
	events, _, err := Schedule([]models.Observation{{AsOfDate: date(2023, time.October, 1), Value: 150}}, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	// First Friday of November 2023 is the 3rd, 08:30 EDT.
	want := time.Date(2023, time.November, 3, 12, 30, 0, 0, time.UTC)
	if !events[0].ReleaseAt.Equal(want) {
		t.Fatalf("release at %s, want %s", events[0].ReleaseAt, want)
	}
}

func TestScheduleOnChange(t *testing.T) {
	p := NewSamePeriodOnChange(nyc(t))
	obs := []models.Observation{
		{AsOfDate: date(2023, time.July, 25), Value: 5.25},
		{AsOfDate: date(2023, time.July, 26), Value: 5.25},
		{AsOfDate: date(2023, time.July, 27), Value: 5.50},
		{AsOfDate: date(2023, time.July, 28), Value: 5.50},
		{AsOfDate: date(2023, time.July, 31), Value: 5.25},
	}
	events, _, err := Schedule(obs, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("want 3 change events, got %d", len(events))
	}
	// 14:00 EDT on the first observed date.
	want := time.Date(2023, time.July, 25, 18, 0, 0, 0, time.UTC)
	if !events[0].ReleaseAt.Equal(want) {
		t.Fatalf("first decision at %s, want %s", events[0].ReleaseAt, want)
	}
	if events[1].Value != 5.50 || events[2].Value != 5.25 {
		t.Fatalf("unexpected change values %v %v", events[1].Value, events[2].Value)
	}
}

func TestScheduleFixedVintage(t *testing.T) {
	p := NewFixedVintage(nyc(t))
	dateOnly := date(2023, time.April, 27)
	exact := time.Date(2023, time.April, 27, 12, 0, 0, 0, time.UTC)
	obs := []models.Observation{
		{AsOfDate: date(2023, time.January, 1), Value: 1.1, Vintage: &dateOnly},
		{AsOfDate: date(2022, time.October, 1), Value: 2.9, Vintage: &exact},
	}
	events, _, err := Schedule(obs, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	// Exact vintage passes through; date-only vintage is anchored at 08:30 ET.
	if !events[0].ReleaseAt.Equal(exact) {
		t.Fatalf("exact vintage %s, want %s", events[0].ReleaseAt, exact)
	}
	anchored := time.Date(2023, time.April, 27, 12, 30, 0, 0, time.UTC)
	if !events[1].ReleaseAt.Equal(anchored) {
		t.Fatalf("anchored vintage %s, want %s", events[1].ReleaseAt, anchored)
	}
}

func TestScheduleSortedOutputAndDrops(t *testing.T) {
	p := NewNextPeriodFixedDay(14, nyc(t))
	obs := []models.Observation{
		{AsOfDate: date(2023, time.May, 1), Value: 2.2},
		{AsOfDate: date(2023, time.February, 1), Value: math.NaN()}, // dropped
		{AsOfDate: date(2023, time.January, 1), Value: 1.5},
		{},                                          // dropped: zero date
		{AsOfDate: date(2023, time.March, 1), Value: 1.8},
	}
	events, stats, err := Schedule(obs, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if stats.Dropped != 2 {
		t.Fatalf("want 2 dropped, got %d", stats.Dropped)
	}
	if len(events) != 3 {
		t.Fatalf("want 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if !events[i-1].ReleaseAt.Before(events[i].ReleaseAt) {
			t.Fatalf("output not strictly ascending at %d", i)
		}
	}
}

func TestScheduleDuplicateInstantLastWins(t *testing.T) {
	p := NewFixedVintage(nyc(t))
	v := time.Date(2023, time.March, 1, 13, 30, 0, 0, time.UTC)
	obs := []models.Observation{
		{AsOfDate: date(2023, time.January, 1), Value: 1.0, Vintage: &v},
		{AsOfDate: date(2023, time.January, 1), Value: 2.0, Vintage: &v},
	}
	events, _, err := Schedule(obs, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(events) != 1 || events[0].Value != 2.0 {
		t.Fatalf("later-listed value must win, got %+v", events)
	}
}

func TestScheduleEmptyInput(t *testing.T) {
	events, stats, err := Schedule(nil, NewNextPeriodFixedDay(10, nyc(t)))
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if len(events) != 0 || stats.Dropped != 0 {
		t.Fatalf("unexpected output %v %+v", events, stats)
	}
}

func TestScheduleDeterministic(t *testing.T) {
	p := NewNextPeriodFixedDay(10, nyc(t))
	obs := []models.Observation{
		{AsOfDate: date(2023, time.March, 1), Value: 5.0},
		{AsOfDate: date(2023, time.January, 1), Value: 6.4},
	}
	a, _, err := Schedule(obs, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	b, _, err := Schedule(obs, p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("non-deterministic length")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic event %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestScheduleInvalidPolicy(t *testing.T) {
	if _, _, err := Schedule(nil, ReleasePolicy{Kind: "bogus", Location: time.UTC}); err == nil {
		t.Fatalf("expected policy error")
	}
	if _, _, err := Schedule(nil, NewNextPeriodFixedDay(10, nil)); err == nil {
		t.Fatalf("expected missing location error")
	}
	if _, _, err := Schedule(nil, NewNextPeriodFixedDay(0, time.UTC)); err == nil {
		t.Fatalf("expected day range error")
	}
}

func TestSelectInitialReleases(t *testing.T) {
	early := time.Date(2023, time.April, 27, 12, 30, 0, 0, time.UTC)
	late := time.Date(2023, time.May, 25, 12, 30, 0, 0, time.UTC)
	obs := []models.Observation{
		{AsOfDate: date(2023, time.January, 1), Value: 2.0, Vintage: &late},
		{AsOfDate: date(2023, time.January, 1), Value: 1.1, Vintage: &early},
		{AsOfDate: date(2022, time.October, 1), Value: 2.9, Vintage: &early},
	}
	got := SelectInitialReleases(obs)
	if len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	if !got[0].AsOfDate.Equal(date(2022, time.October, 1)) {
		t.Fatalf("output must be sorted by as-of date")
	}
	if got[1].Value != 1.1 {
		t.Fatalf("earliest vintage must win, got %v", got[1].Value)
	}
}

func TestSelectInitialReleasesTieKeepsFirst(t *testing.T) {
	v := time.Date(2023, time.April, 27, 12, 30, 0, 0, time.UTC)
	obs := []models.Observation{
		{AsOfDate: date(2023, time.January, 1), Value: 1.0, Vintage: &v},
		{AsOfDate: date(2023, time.January, 1), Value: 9.0, Vintage: &v},
	}
	got := SelectInitialReleases(obs)
	if len(got) != 1 || got[0].Value != 1.0 {
		t.Fatalf("tie must keep the first-listed observation, got %+v", got)
	}
}
