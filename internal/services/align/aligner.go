package align

import (
	"fmt"
	"time"

	"MacroPulse/internal/domain/models"
)

// FillPolicy decides what happens to timeline points before the first release
// event. Different indicators genuinely use different conventions, so the
// choice is explicit per call; there is no silent default.
type FillPolicy int

const (
	// FillForwardOnly leaves points before the first event absent and fills
	// forward only after it. Assuming a value before the data existed is not
	// meaningful for flow indicators (CPI, PPI, NFP).
	FillForwardOnly FillPolicy = iota

	// FillBackfillFromFirst gives leading points the first event's value,
	// treating the earliest known value as valid retroactively. Used for
	// administered rates, where "no decision yet" is approximated by the
	// first known rate.
	FillBackfillFromFirst
)

// Align performs the backward as-of join: one AlignedPoint per timeline
// instant, carrying the value of the event with the greatest release instant
// at or before it. A value is never taken from an event released after the
// query instant — that would be lookahead, the defect this package exists to
// prevent. The last event's value holds open-endedly; releases do not expire.
//
// Both sequences must be strictly ascending (the scheduler guarantees this for
// events; the timeline is a documented caller precondition). The sweep is a
// single merge over both sequences, O(len(timeline)+len(events)).
func Align(events []models.ReleaseEvent, timeline []time.Time, fill FillPolicy) ([]models.AlignedPoint, error) {
	for i := 1; i < len(events); i++ {
		if !events[i-1].ReleaseAt.Before(events[i].ReleaseAt) {
			return nil, fmt.Errorf("%w: events[%d] %s >= events[%d] %s",
				ErrInvalidOrdering, i-1, events[i-1].ReleaseAt, i, events[i].ReleaseAt)
		}
	}
	for i := 1; i < len(timeline); i++ {
		if !timeline[i-1].Before(timeline[i]) {
			return nil, fmt.Errorf("%w: timeline[%d] %s >= timeline[%d] %s",
				ErrInvalidOrdering, i-1, timeline[i-1], i, timeline[i])
		}
	}

	points := make([]models.AlignedPoint, len(timeline))
	j := -1 // index of the latest event with ReleaseAt <= t
	for i, t := range timeline {
		for j+1 < len(events) && !events[j+1].ReleaseAt.After(t) {
			j++
		}
		p := models.AlignedPoint{At: t}
		switch {
		case j >= 0:
			p.Value, p.Valid = events[j].Value, true
		case fill == FillBackfillFromFirst && len(events) > 0:
			p.Value, p.Valid = events[0].Value, true
		}
		points[i] = p
	}
	return points, nil
}

// AllAbsent reports whether every point is absent — the legitimate outcome of
// FillForwardOnly when the whole timeline precedes the first release (e.g. an
// instrument rollout period). A result property, not an error.
func AllAbsent(points []models.AlignedPoint) bool {
	for _, p := range points {
		if p.Valid {
			return false
		}
	}
	return len(points) > 0
}
