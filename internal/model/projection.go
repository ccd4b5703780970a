package model

import "time"

// Distribution is the normal distribution estimated from a category's history.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	// Floored is true when the sample stddev was below the floor and got clamped.
	Floored bool `json:"floored"`
}

// TrajectoryPoint is one simulated future month.
type TrajectoryPoint struct {
	Date   time.Time
	Index  float64 // compounded index, base 100
	Change float64 // drawn monthly change in percent
}

// Trajectory is a single Monte Carlo trial for one category.
type Trajectory struct {
	Points []TrajectoryPoint
}

// PeriodSummary holds distribution statistics across all trials for one future month.
type PeriodSummary struct {
	Date   time.Time `json:"date"`
	Mean   float64   `json:"mean"`
	Median float64   `json:"median"`
	P5     float64   `json:"p5"`
	P25    float64   `json:"p25"`
	P75    float64   `json:"p75"`
	P95    float64   `json:"p95"`
}

// CompositeSummary is the weighted combination of every category's PeriodSummary.
type CompositeSummary PeriodSummary

// CategoryResult is the projection output for one category.
type CategoryResult struct {
	Category     string          `json:"category"`
	Weight       float64         `json:"weight"`
	Observations int             `json:"observations"`
	Distribution Distribution    `json:"distribution"`
	Summaries    []PeriodSummary `json:"summaries"`
}

// Skipped records a category left out of the run.
type Skipped struct {
	Category     string `json:"category"`
	Observations int    `json:"observations"`
	Reason       string `json:"reason"`
}

// Params are the knobs of a projection run.
type Params struct {
	Trials  int    `json:"trials"`
	Periods int    `json:"periods"`
	Seed    uint64 `json:"seed"`
	Filter  string `json:"filter,omitempty"`
	// ChangeFloor, when set, clamps drawn monthly changes from below (percent).
	ChangeFloor *float64 `json:"change_floor,omitempty"`
}

// Projection is the full result set of a run.
type Projection struct {
	Params            Params             `json:"params"`
	GeneratedAt       time.Time          `json:"generated_at"`
	Categories        []CategoryResult   `json:"categories"`
	Skipped           []Skipped          `json:"skipped,omitempty"`
	NormalizedWeights map[string]float64 `json:"normalized_weights,omitempty"`
	Composite         []CompositeSummary `json:"composite,omitempty"`

	// CompositeErr is set when the composite step failed; Categories are still valid.
	CompositeErr   error  `json:"-"`
	CompositeError string `json:"composite_error,omitempty"`
}

// Category returns the result for name, if present.
func (p *Projection) Category(name string) (CategoryResult, bool) {
	for _, c := range p.Categories {
		if c.Category == name {
			return c, true
		}
	}
	return CategoryResult{}, false
}
