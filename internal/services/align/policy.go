package align

import (
	"time"

	"MacroPulse/internal/domain/models"
)

// PolicyKind tags one of the closed set of release-scheduling rules.
type PolicyKind string

const (
	// FixedVintage uses the observation's vintage instant directly. A
	// date-only vintage (midnight UTC) is anchored at the policy clock in the
	// exchange timezone; so is the as-of date itself when no vintage exists.
	FixedVintage PolicyKind = "fixed_vintage"

	// NextPeriodFixedDay releases on a fixed day of the month after the
	// reporting period, at the policy clock, rolled forward day-by-day off
	// weekends.
	NextPeriodFixedDay PolicyKind = "next_period_fixed_day"

	// NextPeriodFirstWeekday releases on the first occurrence of a weekday in
	// the month after the reporting period, at the policy clock.
	NextPeriodFirstWeekday PolicyKind = "next_period_first_weekday"

	// SamePeriodOnChange emits an event on the observation's own date at the
	// policy clock, but only when the value differs from the previous
	// observation (or is the first one). Used for daily administered rates.
	SamePeriodOnChange PolicyKind = "same_period_on_change"
)

// Canonical release clocks in the exchange civil timezone. 08:30 is the
// standard US economic release hour; 14:00 is the FOMC statement hour.
const (
	ReleaseHour   = 8
	ReleaseMinute = 30
	DecisionHour  = 14
)

// ReleasePolicy maps an observation's reporting period to the UTC instant its
// figure became public. Local civil time and DST rules govern construction
// only; everything downstream compares instants.
type ReleasePolicy struct {
	Kind     PolicyKind
	Day      int          // target day of month, NextPeriodFixedDay only
	Weekday  time.Weekday // target weekday, NextPeriodFirstWeekday only
	Hour     int
	Minute   int
	Location *time.Location // exchange civil timezone
}

// NewFixedVintage returns the pass-through policy anchored at 08:30 local.
func NewFixedVintage(loc *time.Location) ReleasePolicy {
	return ReleasePolicy{Kind: FixedVintage, Hour: ReleaseHour, Minute: ReleaseMinute, Location: loc}
}

// NewNextPeriodFixedDay returns the weekend-rolled fixed-day policy at 08:30 local.
func NewNextPeriodFixedDay(day int, loc *time.Location) ReleasePolicy {
	return ReleasePolicy{Kind: NextPeriodFixedDay, Day: day, Hour: ReleaseHour, Minute: ReleaseMinute, Location: loc}
}

// NewNextPeriodFirstWeekday returns the first-weekday-of-next-month policy at 08:30 local.
func NewNextPeriodFirstWeekday(wd time.Weekday, loc *time.Location) ReleasePolicy {
	return ReleasePolicy{Kind: NextPeriodFirstWeekday, Weekday: wd, Hour: ReleaseHour, Minute: ReleaseMinute, Location: loc}
}

// NewSamePeriodOnChange returns the change-triggered daily policy at 14:00 local.
func NewSamePeriodOnChange(loc *time.Location) ReleasePolicy {
	return ReleasePolicy{Kind: SamePeriodOnChange, Hour: DecisionHour, Location: loc}
}

// Validate checks the policy is well formed.
func (p ReleasePolicy) Validate() error {
	if p.Location == nil {
		return ErrInvalidPolicy
	}
	switch p.Kind {
	case FixedVintage, NextPeriodFirstWeekday, SamePeriodOnChange:
	case NextPeriodFixedDay:
		if p.Day < 1 || p.Day > 31 {
			return ErrInvalidPolicy
		}
	default:
		return ErrInvalidPolicy
	}
	if p.Hour < 0 || p.Hour > 23 || p.Minute < 0 || p.Minute > 59 {
		return ErrInvalidPolicy
	}
	return nil
}

// releaseAt computes the UTC release instant for one observation. Pure; the
// weekend roll and weekday search operate on local calendar dates, and the
// instant conversion is the last step.
func (p ReleasePolicy) releaseAt(o models.Observation) time.Time {
	switch p.Kind {
	case FixedVintage:
		if o.Vintage != nil {
			v := *o.Vintage
			if isDateOnly(v) {
				y, m, d := v.UTC().Date()
				return time.Date(y, m, d, p.Hour, p.Minute, 0, 0, p.Location).UTC()
			}
			return v.UTC()
		}
		y, m, d := o.AsOfDate.UTC().Date()
		return time.Date(y, m, d, p.Hour, p.Minute, 0, 0, p.Location).UTC()

	case NextPeriodFixedDay:
		y, m, _ := o.AsOfDate.UTC().Date()
		// time.Date normalizes month 13 to January of the next year.
		local := time.Date(y, m+1, p.Day, p.Hour, p.Minute, 0, 0, p.Location)
		for isWeekend(local.Weekday()) {
			local = local.AddDate(0, 0, 1)
		}
		return local.UTC()

	case NextPeriodFirstWeekday:
		y, m, _ := o.AsOfDate.UTC().Date()
		local := time.Date(y, m+1, 1, p.Hour, p.Minute, 0, 0, p.Location)
		for local.Weekday() != p.Weekday {
			local = local.AddDate(0, 0, 1)
		}
		return local.UTC()

	default: // SamePeriodOnChange
		y, m, d := o.AsOfDate.UTC().Date()
		return time.Date(y, m, d, p.Hour, p.Minute, 0, 0, p.Location).UTC()
	}
}

func isWeekend(wd time.Weekday) bool {
	return wd == time.Saturday || wd == time.Sunday
}

// isDateOnly reports whether t carries no clock component (midnight UTC),
// i.e. the provider gave a date, not an instant.
func isDateOnly(t time.Time) bool {
	u := t.UTC()
	h, m, s := u.Clock()
	return h == 0 && m == 0 && s == 0 && u.Nanosecond() == 0
}
