package sentiment

import (
	"fmt"
	"math"
	"sort"
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/services/align"
)

// Aggregate buckets article-level records into hourly windows per subject and
// reindexes them onto the caller-supplied dense hourly grid. A record belongs
// to the bucket floor(published, 1h). Hours with no records get Count=0 and
// NaN means — absence is the correct terminal value here, never a gap to
// forward-fill, because downstream consumers must be able to tell "no news"
// from "news with that mean". Records falling outside the grid are ignored.
//
// The grid must be strictly ascending. Output is ordered by subject, then hour.
func Aggregate(records []models.SentimentRecord, grid []time.Time) ([]models.SentimentBucket, error) {
	for i := 1; i < len(grid); i++ {
		if !grid[i-1].Before(grid[i]) {
			return nil, fmt.Errorf("%w: grid[%d] %s >= grid[%d] %s",
				align.ErrInvalidOrdering, i-1, grid[i-1], i, grid[i])
		}
	}

	gridIdx := make(map[int64]struct{}, len(grid))
	for _, h := range grid {
		gridIdx[h.Unix()] = struct{}{}
	}

	type acc struct {
		count int
		sums  [3]float64
		ns    [3]int
	}
	cells := make(map[string]map[int64]*acc)
	for _, r := range records {
		hour := r.PublishedAt.UTC().Truncate(time.Hour).Unix()
		if _, on := gridIdx[hour]; !on {
			continue
		}
		bySubject, ok := cells[r.Subject]
		if !ok {
			bySubject = make(map[int64]*acc)
			cells[r.Subject] = bySubject
		}
		a := bySubject[hour]
		if a == nil {
			a = &acc{}
			bySubject[hour] = a
		}
		a.count++
		for f, v := range [3]float64{r.Overall, r.Score, r.Relevance} {
			if !math.IsNaN(v) {
				a.sums[f] += v
				a.ns[f]++
			}
		}
	}

	subjects := make([]string, 0, len(cells))
	for s := range cells {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	out := make([]models.SentimentBucket, 0, len(subjects)*len(grid))
	for _, s := range subjects {
		for _, h := range grid {
			b := models.SentimentBucket{
				Subject:       s,
				Hour:          h,
				OverallMean:   math.NaN(),
				ScoreMean:     math.NaN(),
				RelevanceMean: math.NaN(),
			}
			if a := cells[s][h.Unix()]; a != nil {
				b.Count = a.count
				means := [3]*float64{&b.OverallMean, &b.ScoreMean, &b.RelevanceMean}
				for f, n := range a.ns {
					if n > 0 {
						*means[f] = a.sums[f] / float64(n)
					}
				}
			}
			out = append(out, b)
		}
	}
	return out, nil
}

// HourlyGrid builds the dense hourly instant sequence covering [from, to],
// both bounds floored to the hour.
func HourlyGrid(from, to time.Time) []time.Time {
	from = from.UTC().Truncate(time.Hour)
	to = to.UTC().Truncate(time.Hour)
	if to.Before(from) {
		return nil
	}
	grid := make([]time.Time, 0, int(to.Sub(from)/time.Hour)+1)
	for h := from; !h.After(to); h = h.Add(time.Hour) {
		grid = append(grid, h)
	}
	return grid
}
