package transform

import (
	"math"
	"sort"

	"MacroPulse/internal/domain/models"
)

// PercentChange computes the percent change over `periods` observations,
// in percent: ((v_t / v_{t-periods}) - 1) * 100. The first `periods`
// observations have no base and are dropped, matching a pct_change+dropna.
// A zero base yields NaN, which the scheduler later drops as malformed.
// Input is sorted by as-of date first; the input slice is not mutated.
func PercentChange(observations []models.Observation, periods int) []models.Observation {
	if periods <= 0 || len(observations) <= periods {
		return nil
	}
	obs := sortedCopy(observations)
	out := make([]models.Observation, 0, len(obs)-periods)
	for i := periods; i < len(obs); i++ {
		base := obs[i-periods].Value
		d := obs[i]
		if base == 0 {
			d.Value = math.NaN()
		} else {
			d.Value = (obs[i].Value/base - 1) * 100
		}
		out = append(out, d)
	}
	return out
}

// Diff computes the difference over `periods` observations in the series'
// own units, dropping the first `periods` entries.
func Diff(observations []models.Observation, periods int) []models.Observation {
	if periods <= 0 || len(observations) <= periods {
		return nil
	}
	obs := sortedCopy(observations)
	out := make([]models.Observation, 0, len(obs)-periods)
	for i := periods; i < len(obs); i++ {
		d := obs[i]
		d.Value = obs[i].Value - obs[i-periods].Value
		out = append(out, d)
	}
	return out
}

func sortedCopy(observations []models.Observation) []models.Observation {
	obs := make([]models.Observation, len(observations))
	copy(obs, observations)
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].AsOfDate.Before(obs[j].AsOfDate)
	})
	return obs
}
