// Package model defines domain types for ipcsim price-index series and projections.
package model

import "time"

// Observation is one category's entry for one calendar month.
type Observation struct {
	Date     time.Time // first day of the month, UTC
	Category string
	Weight   float64 // percentage contribution to the national index
	// MonthlyChange is the percent change that month; nil when the source left it blank.
	MonthlyChange *float64
}

// HasChange reports whether the observation carries a monthly change.
func (o Observation) HasChange() bool {
	return o.MonthlyChange != nil
}

// Series is the date-ordered history of a single category.
type Series struct {
	Category     string
	Observations []Observation
}

// Len returns the number of observations in the series.
func (s Series) Len() int {
	return len(s.Observations)
}

// Changes returns the non-absent monthly changes in date order.
func (s Series) Changes() []float64 {
	out := make([]float64, 0, len(s.Observations))
	for _, o := range s.Observations {
		if o.MonthlyChange != nil {
			out = append(out, *o.MonthlyChange)
		}
	}
	return out
}

// Latest returns the most recent observation, the first one on ties. ok is
// false for an empty series.
func (s Series) Latest() (Observation, bool) {
	if len(s.Observations) == 0 {
		return Observation{}, false
	}
	latest := s.Observations[0]
	for _, o := range s.Observations[1:] {
		if o.Date.After(latest.Date) {
			latest = o
		}
	}
	return latest, true
}

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the first day of the month n months after t's month.
// Unlike time.AddDate it never overflows into the following month.
func AddMonths(t time.Time, n int) time.Time {
	m := MonthStart(t)
	return time.Date(m.Year(), m.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// Float returns a pointer to v, for building observations in code and tests.
func Float(v float64) *float64 {
	return &v
}
