package align

import (
	"math"
	"sort"

	"MacroPulse/internal/domain/models"
)

// Schedule derives the public-release event sequence for one indicator.
// Input observations need not be sorted; output is strictly ascending by
// release instant. Malformed observations (zero date without vintage, NaN
// value) are dropped and counted in stats, never fatal. When two observations
// map to the same instant the later-listed one wins. Empty input is a valid
// input and yields an empty sequence.
//
// Pure and deterministic: identical input always yields identical output,
// independent of wall-clock call time.
func Schedule(observations []models.Observation, policy ReleasePolicy) ([]models.ReleaseEvent, ScheduleStats, error) {
	var stats ScheduleStats
	if err := policy.Validate(); err != nil {
		return nil, stats, err
	}

	type indexed struct {
		obs models.Observation
		idx int // position in the input, breaks ties deterministically
	}
	kept := make([]indexed, 0, len(observations))
	for i, o := range observations {
		if (o.AsOfDate.IsZero() && o.Vintage == nil) || math.IsNaN(o.Value) {
			stats.Dropped++
			continue
		}
		kept = append(kept, indexed{obs: o, idx: i})
	}
	if len(kept) == 0 {
		return []models.ReleaseEvent{}, stats, nil
	}

	// Change detection needs period order, and fixed-day/first-weekday math is
	// per-observation, so sorting by as-of date up front covers every kind.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].obs.AsOfDate.Before(kept[j].obs.AsOfDate)
	})

	type staged struct {
		ev  models.ReleaseEvent
		idx int
	}
	out := make([]staged, 0, len(kept))
	if policy.Kind == SamePeriodOnChange {
		emitted := false
		var prev float64
		for _, k := range kept {
			if emitted && k.obs.Value == prev {
				continue
			}
			out = append(out, staged{
				ev:  models.ReleaseEvent{ReleaseAt: policy.releaseAt(k.obs), Value: k.obs.Value},
				idx: k.idx,
			})
			prev, emitted = k.obs.Value, true
		}
	} else {
		for _, k := range kept {
			out = append(out, staged{
				ev:  models.ReleaseEvent{ReleaseAt: policy.releaseAt(k.obs), Value: k.obs.Value},
				idx: k.idx,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ev.ReleaseAt.Equal(out[j].ev.ReleaseAt) {
			return out[i].idx < out[j].idx
		}
		return out[i].ev.ReleaseAt.Before(out[j].ev.ReleaseAt)
	})

	events := make([]models.ReleaseEvent, 0, len(out))
	for _, s := range out {
		if n := len(events); n > 0 && events[n-1].ReleaseAt.Equal(s.ev.ReleaseAt) {
			events[n-1].Value = s.ev.Value // duplicate instant: overwrite, not accumulate
			continue
		}
		events = append(events, s.ev)
	}
	stats.Events = len(events)
	return events, stats, nil
}

// SelectInitialReleases pre-filters a vintage-capable series to one
// observation per as-of date: the one with the earliest vintage instant, ties
// broken by input order. Observations without a vintage pass through as their
// own initial release. Output is sorted ascending by as-of date.
func SelectInitialReleases(observations []models.Observation) []models.Observation {
	type chosen struct {
		obs models.Observation
		idx int
	}
	byDate := make(map[int64]chosen, len(observations))
	for i, o := range observations {
		key := o.AsOfDate.UTC().Unix()
		cur, ok := byDate[key]
		if !ok {
			byDate[key] = chosen{obs: o, idx: i}
			continue
		}
		if o.Vintage != nil && cur.obs.Vintage != nil && o.Vintage.Before(*cur.obs.Vintage) {
			byDate[key] = chosen{obs: o, idx: i}
		}
	}

	out := make([]models.Observation, 0, len(byDate))
	for _, c := range byDate {
		out = append(out, c.obs)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AsOfDate.Before(out[j].AsOfDate)
	})
	return out
}
