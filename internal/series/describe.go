package series

import (
	"math"
	"time"

	"github.com/aclements/go-moremath/stats"
)

// Description summarizes one category's historical monthly changes.
type Description struct {
	Category      string
	Observations  int
	WithChange    int // observations with a non-absent monthly change
	CurrentWeight float64
	First         time.Time
	Last          time.Time

	Mean   float64
	StdDev float64 // NaN with fewer than 2 changes
	Min    float64
	Max    float64
	P5     float64
	Median float64
	P95    float64
}

// Describe computes a Description for every category, in store order.
func (s *Store) Describe() []Description {
	out := make([]Description, 0, len(s.order))
	for _, c := range s.order {
		out = append(out, s.describe(c))
	}
	return out
}

func (s *Store) describe(category string) Description {
	ser, _ := s.Series(category)
	d := Description{
		Category:     category,
		Observations: ser.Len(),
		StdDev:       math.NaN(),
	}
	if w, ok := s.CurrentWeight(category); ok {
		d.CurrentWeight = w
	}
	if ser.Len() > 0 {
		d.First = ser.Observations[0].Date
		d.Last = ser.Observations[ser.Len()-1].Date
	}

	changes := ser.Changes()
	d.WithChange = len(changes)
	if len(changes) == 0 {
		return d
	}

	sample := stats.Sample{Xs: changes}
	sample.Sort()

	d.Mean = sample.Mean()
	if len(changes) >= 2 {
		d.StdDev = sample.StdDev()
	}
	d.Min, d.Max = sample.Bounds()
	d.P5 = sample.Quantile(0.05)
	d.Median = sample.Quantile(0.5)
	d.P95 = sample.Quantile(0.95)
	return d
}
