// Package pipeline orchestrates simulation, aggregation and the weighted composite.
package pipeline

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/theirongolddev/ipcsim/internal/model"
)

// Aggregate computes one PeriodSummary per future month across all
// trajectories. Trajectories are expected to share the same dates; the
// dates of the first trajectory are used. No trajectories yields nil.
func Aggregate(trajectories []model.Trajectory) []model.PeriodSummary {
	if len(trajectories) == 0 || len(trajectories[0].Points) == 0 {
		return nil
	}

	periods := len(trajectories[0].Points)
	summaries := make([]model.PeriodSummary, 0, periods)
	values := make([]float64, 0, len(trajectories))

	for i := 0; i < periods; i++ {
		values = values[:0]
		for _, tr := range trajectories {
			if i < len(tr.Points) {
				values = append(values, tr.Points[i].Index)
			}
		}
		sort.Float64s(values)

		summaries = append(summaries, model.PeriodSummary{
			Date:   trajectories[0].Points[i].Date,
			Mean:   stat.Mean(values, nil),
			Median: Percentile(values, 50),
			P5:     Percentile(values, 5),
			P25:    Percentile(values, 25),
			P75:    Percentile(values, 75),
			P95:    Percentile(values, 95),
		})
	}
	return summaries
}

// Percentile returns the p-th percentile (0..100) of sorted using linear
// interpolation between the closest ranks, rank = p/100*(n-1).
// sorted must be in ascending order. An empty slice yields NaN.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return math.NaN()
	case n == 1 || p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
