package align

import "errors"

var (
	// ErrInvalidOrdering means a sequence documented as ascending was not.
	// This is a caller bug and fails fast rather than re-sorting silently.
	ErrInvalidOrdering = errors.New("input sequence not strictly ascending")

	// ErrInvalidPolicy means a ReleasePolicy is malformed (unknown kind,
	// missing timezone, day of month out of range).
	ErrInvalidPolicy = errors.New("invalid release policy")
)

// ScheduleStats reports what Schedule did with its input. Dropped counts
// observations discarded for a zero date or NaN value; dropping is deliberate
// policy (bad rows never fail the whole schedule) but the caller must be able
// to see it happened.
type ScheduleStats struct {
	Events  int
	Dropped int
}
