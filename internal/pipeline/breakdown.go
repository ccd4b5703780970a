package pipeline

import (
	"math"
	"sort"

	"github.com/theirongolddev/ipcsim/internal/model"
)

// ContributionRow is one category's share of the composite at a horizon.
type ContributionRow struct {
	Category         string
	Weight           float64
	NormalizedWeight float64
	Median           float64 // category median index at the horizon
	Band             float64 // P95 - P5 at the horizon
	// Points is the category's weighted contribution to the composite median
	// change, in index points above (or below) the base.
	Points float64
}

// ContributionBreakdown splits the composite median change at the final
// projected month by category, sorted by absolute contribution descending.
// It returns nil when the composite was not computed.
func ContributionBreakdown(p *model.Projection) []ContributionRow {
	if p == nil || len(p.NormalizedWeights) == 0 {
		return nil
	}

	rows := make([]ContributionRow, 0, len(p.Categories))
	for _, c := range p.Categories {
		n := len(c.Summaries)
		if n == 0 {
			continue
		}
		last := c.Summaries[n-1]
		w := p.NormalizedWeights[c.Category]
		rows = append(rows, ContributionRow{
			Category:         c.Category,
			Weight:           c.Weight,
			NormalizedWeight: w,
			Median:           last.Median,
			Band:             last.P95 - last.P5,
			Points:           w * (last.Median - 100),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		ai, aj := math.Abs(rows[i].Points), math.Abs(rows[j].Points)
		if ai != aj {
			return ai > aj
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}
