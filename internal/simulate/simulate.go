// Package simulate generates Monte Carlo index trajectories for one price-index category.
//
// Each category is modeled as a random walk: monthly percent changes are drawn
// i.i.d. from a normal distribution estimated from the category's history and
// compounded from a base index of 100.
package simulate

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/theirongolddev/ipcsim/internal/model"
)

const (
	// BaseIndex is the index value every trajectory compounds from.
	BaseIndex = 100.0
	// MinStdDev floors the estimated standard deviation so a flat history
	// still produces a spread of outcomes.
	MinStdDev = 0.01
	// MinObservations is the smallest history a category can be simulated from.
	MinObservations = 2
)

var (
	// ErrInsufficientData means the category history is too short to estimate a stddev.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrEmptyInput means there was nothing to simulate (no trials or no periods).
	ErrEmptyInput = errors.New("empty input")
)

type options struct {
	changeFloor *float64
}

// Option adjusts how trajectories are drawn.
type Option func(*options)

// WithChangeFloor clamps every drawn monthly change to at least floor percent.
// A floor of -100 keeps indices non-negative. nil leaves draws unbounded.
func WithChangeFloor(floor *float64) Option {
	return func(o *options) {
		o.changeFloor = floor
	}
}

// Estimate fits a normal distribution to the non-absent monthly changes of s.
// It returns ErrInsufficientData when s has fewer than two observations or
// fewer than two usable changes.
func Estimate(s model.Series) (model.Distribution, error) {
	if s.Len() < MinObservations {
		return model.Distribution{}, fmt.Errorf("%s has %d observations: %w", s.Category, s.Len(), ErrInsufficientData)
	}
	changes := s.Changes()
	if len(changes) < MinObservations {
		return model.Distribution{}, fmt.Errorf("%s has %d monthly changes: %w", s.Category, len(changes), ErrInsufficientData)
	}

	d := model.Distribution{
		Mean:   stat.Mean(changes, nil),
		StdDev: stat.StdDev(changes, nil),
	}
	// Written as a negated comparison so NaN is floored too.
	if !(d.StdDev >= MinStdDev) {
		d.StdDev = MinStdDev
		d.Floored = true
	}
	return d, nil
}

// FutureDates returns periods consecutive months starting the month after
// the latest observation in s.
func FutureDates(s model.Series, periods int) []time.Time {
	latest, ok := s.Latest()
	if !ok || periods <= 0 {
		return nil
	}
	dates := make([]time.Time, periods)
	for i := range dates {
		dates[i] = model.AddMonths(latest.Date, i+1)
	}
	return dates
}

// Simulate estimates the distribution of s and draws trials trajectories
// over periods future months using src as the only source of randomness.
func Simulate(s model.Series, trials, periods int, src rand.Source, opts ...Option) ([]model.Trajectory, error) {
	if trials <= 0 || periods <= 0 {
		return nil, fmt.Errorf("trials=%d periods=%d: %w", trials, periods, ErrEmptyInput)
	}
	dist, err := Estimate(s)
	if err != nil {
		return nil, err
	}
	return Draw(dist, FutureDates(s, periods), trials, src, opts...), nil
}

// Draw generates trials trajectories, one point per date, from dist.
func Draw(dist model.Distribution, dates []time.Time, trials int, src rand.Source, opts ...Option) []model.Trajectory {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if trials <= 0 || len(dates) == 0 {
		return nil
	}

	normal := distuv.Normal{Mu: dist.Mean, Sigma: dist.StdDev, Src: src}

	out := make([]model.Trajectory, trials)
	for t := range out {
		points := make([]model.TrajectoryPoint, len(dates))
		index := BaseIndex
		for i, date := range dates {
			change := normal.Rand()
			if o.changeFloor != nil && change < *o.changeFloor {
				change = *o.changeFloor
			}
			index *= 1 + change/100
			points[i] = model.TrajectoryPoint{Date: date, Index: index, Change: change}
		}
		out[t].Points = points
	}
	return out
}

// NewSource returns the random source for one category under a run seed.
// Streams are keyed by category name so results do not depend on the order
// in which categories are simulated.
func NewSource(seed uint64, category string) rand.Source {
	return rand.NewPCG(seed, StreamID(category))
}

// StreamID hashes a category name into a PCG stream selector.
func StreamID(category string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(category))
	return h.Sum64()
}
