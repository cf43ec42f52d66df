package models

import "time"

// Observation is one raw indicator print for one reporting period, as fetched
// from the statistics provider. Immutable once fetched.
type Observation struct {
	AsOfDate time.Time  // reporting-period calendar date (midnight UTC)
	Value    float64    // NaN marks an unparseable value; schedulers drop it
	Vintage  *time.Time // first-release instant, when the series exposes vintages
}

// ReleaseEvent is an observation mapped to the instant its figure became
// public. Sequences of ReleaseEvents are ordered by ReleaseAt.
type ReleaseEvent struct {
	ReleaseAt time.Time // UTC
	Value     float64
}

// AlignedPoint is one timeline entry after as-of alignment. Valid=false means
// no release was public at that hour and the fill policy left it absent.
type AlignedPoint struct {
	At    time.Time
	Value float64
	Valid bool
}

// AlignedRow is a persisted aligned value for one indicator column.
// Value is nil for absent points.
type AlignedRow struct {
	Indicator string    `json:"indicator"`
	Column    string    `json:"column"`
	At        time.Time `json:"datetime"`
	Value     *float64  `json:"value"`
}
