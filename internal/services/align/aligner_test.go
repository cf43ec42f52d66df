package align

import (
	"errors"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
)

func instant(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func twoEvents() []models.ReleaseEvent {
	return []models.ReleaseEvent{
		{ReleaseAt: instant("2023-02-03T13:30:00Z"), Value: 1.0},
		{ReleaseAt: instant("2023-03-03T13:30:00Z"), Value: 1.2},
	}
}

func threeHourTimeline() []time.Time {
	return []time.Time{
		instant("2023-02-01T00:00:00Z"),
		instant("2023-02-03T14:00:00Z"),
		instant("2023-04-01T00:00:00Z"),
	}
}

func TestAlignForwardOnly(t *testing.T) {
	points, err := Align(twoEvents(), threeHourTimeline(), FillForwardOnly)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if points[0].Valid {
		t.Fatalf("leading point must stay absent, got %v", points[0].Value)
	}
	if !points[1].Valid || points[1].Value != 1.0 {
		t.Fatalf("point 1 = %+v, want 1.0", points[1])
	}
	if !points[2].Valid || points[2].Value != 1.2 {
		t.Fatalf("point 2 = %+v, want 1.2", points[2])
	}
}

func TestAlignBackfillFromFirst(t *testing.T) {
	points, err := Align(twoEvents(), threeHourTimeline(), FillBackfillFromFirst)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	want := []float64{1.0, 1.0, 1.2}
	for i, w := range want {
		if !points[i].Valid || points[i].Value != w {
			t.Fatalf("point %d = %+v, want %v", i, points[i], w)
		}
	}
}

func TestAlignNoLookahead(t *testing.T) {
	events := twoEvents()
	// One second before the first release: nothing may be known yet.
	timeline := []time.Time{instant("2023-02-03T13:29:59Z"), instant("2023-02-03T13:30:00Z")}
	points, err := Align(events, timeline, FillForwardOnly)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if points[0].Valid {
		t.Fatalf("value visible before its release instant")
	}
	if !points[1].Valid || points[1].Value != 1.0 {
		t.Fatalf("value must be visible exactly at its release instant, got %+v", points[1])
	}
}

func TestAlignTrailingHold(t *testing.T) {
	timeline := []time.Time{instant("2030-01-01T00:00:00Z")}
	points, err := Align(twoEvents(), timeline, FillForwardOnly)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if !points[0].Valid || points[0].Value != 1.2 {
		t.Fatalf("last release must hold open-endedly, got %+v", points[0])
	}
}

func TestAlignIdempotent(t *testing.T) {
	first, err := Align(twoEvents(), threeHourTimeline(), FillForwardOnly)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	// Treat each materialized point as a degenerate single-instant event.
	var asEvents []models.ReleaseEvent
	for _, p := range first {
		if p.Valid {
			asEvents = append(asEvents, models.ReleaseEvent{ReleaseAt: p.At, Value: p.Value})
		}
	}
	second, err := Align(asEvents, threeHourTimeline(), FillForwardOnly)
	if err != nil {
		t.Fatalf("re-align: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("re-alignment differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAlignEmptyEvents(t *testing.T) {
	for _, fill := range []FillPolicy{FillForwardOnly, FillBackfillFromFirst} {
		points, err := Align(nil, threeHourTimeline(), fill)
		if err != nil {
			t.Fatalf("empty events must not error: %v", err)
		}
		if !AllAbsent(points) {
			t.Fatalf("no events means fully absent output")
		}
	}
}

func TestAlignAllAbsentBeforeFirstRelease(t *testing.T) {
	timeline := []time.Time{instant("2022-01-01T00:00:00Z"), instant("2022-06-01T00:00:00Z")}
	points, err := Align(twoEvents(), timeline, FillForwardOnly)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if !AllAbsent(points) {
		t.Fatalf("timeline entirely before first release must be fully absent")
	}
}

func TestAlignInvalidOrdering(t *testing.T) {
	unsorted := []models.ReleaseEvent{
		{ReleaseAt: instant("2023-03-03T13:30:00Z"), Value: 1.2},
		{ReleaseAt: instant("2023-02-03T13:30:00Z"), Value: 1.0},
	}
	if _, err := Align(unsorted, threeHourTimeline(), FillForwardOnly); !errors.Is(err, ErrInvalidOrdering) {
		t.Fatalf("want ErrInvalidOrdering for events, got %v", err)
	}

	dup := []time.Time{instant("2023-02-01T00:00:00Z"), instant("2023-02-01T00:00:00Z")}
	if _, err := Align(twoEvents(), dup, FillForwardOnly); !errors.Is(err, ErrInvalidOrdering) {
		t.Fatalf("want ErrInvalidOrdering for timeline, got %v", err)
	}
}

func TestAlignEmptyTimeline(t *testing.T) {
	points, err := Align(twoEvents(), nil, FillForwardOnly)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("empty timeline yields empty output")
	}
	if AllAbsent(points) {
		t.Fatalf("AllAbsent is false for empty output")
	}
}
