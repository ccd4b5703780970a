package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/simulate"
)

var (
	// ErrFutureDateMismatch means categories were projected over different months.
	ErrFutureDateMismatch = errors.New("future date mismatch")
	// ErrEmptyInput is shared with the simulator so callers can test either layer.
	ErrEmptyInput = simulate.ErrEmptyInput
)

// Contribution is one category's input to the composite.
type Contribution struct {
	Weight    float64
	Summaries []model.PeriodSummary
}

// FutureDateMismatchError describes the first category whose projected
// months disagree with the reference category.
type FutureDateMismatchError struct {
	Category  string
	Reference string
	Index     int       // position of the first differing month, -1 when only lengths differ
	Want      time.Time // reference month at Index
	Got       time.Time // category month at Index
	WantLen   int
	GotLen    int
}

func (e *FutureDateMismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("future date mismatch: %s has %d periods, %s has %d",
			e.Category, e.GotLen, e.Reference, e.WantLen)
	}
	return fmt.Sprintf("future date mismatch: %s period %d is %s, %s has %s",
		e.Category, e.Index+1, e.Got.Format("2006-01"), e.Reference, e.Want.Format("2006-01"))
}

// Is lets errors.Is match ErrFutureDateMismatch.
func (e *FutureDateMismatchError) Is(target error) bool {
	return target == ErrFutureDateMismatch
}

// NormalizeWeights scales weights so they sum to 1. A non-positive total
// returns ErrEmptyInput.
func NormalizeWeights(weights map[string]float64) (map[string]float64, error) {
	names := sortedNames(weights)
	var total float64
	for _, name := range names {
		total += weights[name]
	}
	if len(names) == 0 || total <= 0 {
		return nil, fmt.Errorf("total weight %g across %d categories: %w", total, len(names), ErrEmptyInput)
	}

	out := make(map[string]float64, len(weights))
	for _, name := range names {
		out[name] = weights[name] / total
	}
	return out, nil
}

// Combine folds per-category summaries into one weighted composite per month.
// Every category must cover exactly the same months.
func Combine(contribs map[string]Contribution) ([]model.CompositeSummary, error) {
	if len(contribs) == 0 {
		return nil, fmt.Errorf("no categories to combine: %w", ErrEmptyInput)
	}

	names := sortedNames(contribs)
	refName := names[0]
	ref := contribs[refName].Summaries
	for _, name := range names {
		if err := checkDates(refName, ref, name, contribs[name].Summaries); err != nil {
			return nil, err
		}
	}

	weights := make(map[string]float64, len(contribs))
	for name, c := range contribs {
		weights[name] = c.Weight
	}
	norm, err := NormalizeWeights(weights)
	if err != nil {
		return nil, err
	}

	acc := make([]model.CompositeSummary, len(ref))
	for i, s := range ref {
		acc[i].Date = s.Date
	}
	for _, name := range names {
		acc = addWeighted(acc, norm[name], contribs[name].Summaries)
	}
	return acc, nil
}

func addWeighted(acc []model.CompositeSummary, w float64, s []model.PeriodSummary) []model.CompositeSummary {
	out := make([]model.CompositeSummary, len(acc))
	for i, a := range acc {
		out[i] = model.CompositeSummary{
			Date:   a.Date,
			Mean:   a.Mean + w*s[i].Mean,
			Median: a.Median + w*s[i].Median,
			P5:     a.P5 + w*s[i].P5,
			P25:    a.P25 + w*s[i].P25,
			P75:    a.P75 + w*s[i].P75,
			P95:    a.P95 + w*s[i].P95,
		}
	}
	return out
}

func checkDates(refName string, ref []model.PeriodSummary, name string, got []model.PeriodSummary) error {
	if len(ref) == 0 || len(got) != len(ref) {
		return &FutureDateMismatchError{
			Category: name, Reference: refName, Index: -1,
			WantLen: len(ref), GotLen: len(got),
		}
	}
	for i := range ref {
		if !ref[i].Date.Equal(got[i].Date) {
			return &FutureDateMismatchError{
				Category: name, Reference: refName, Index: i,
				Want: ref[i].Date, Got: got[i].Date,
				WantLen: len(ref), GotLen: len(got),
			}
		}
	}
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
