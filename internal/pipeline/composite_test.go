package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ipcsim/internal/model"
)

func summaries(start time.Time, values ...float64) []model.PeriodSummary {
	out := make([]model.PeriodSummary, len(values))
	for i, v := range values {
		out[i] = model.PeriodSummary{
			Date: model.AddMonths(start, i),
			Mean: v, Median: v, P5: v - 2, P25: v - 1, P75: v + 1, P95: v + 2,
		}
	}
	return out
}

var jan = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNormalizeWeights_SumsToOne(t *testing.T) {
	norm, err := NormalizeWeights(map[string]float64{"a": 23.4, "b": 1.2, "c": 9.9, "d": 0, "e": 65.5})
	require.NoError(t, err)

	var sum float64
	for _, w := range norm {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Equal(t, 0.0, norm["d"])
	assert.InDelta(t, 65.5/100, norm["e"], 1e-12)
}

func TestNormalizeWeights_ZeroTotal(t *testing.T) {
	_, err := NormalizeWeights(map[string]float64{"a": 0, "b": 0})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = NormalizeWeights(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestCombine_Empty(t *testing.T) {
	got, err := Combine(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Nil(t, got)
}

func TestCombine_UniformIsIdempotent(t *testing.T) {
	common := summaries(jan, 101.25, 102.5, 103.75)
	contribs := map[string]Contribution{
		"Alimentos": {Weight: 10, Summaries: common},
		"Vivienda":  {Weight: 10, Summaries: common},
	}
	got, err := Combine(contribs)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, model.CompositeSummary(common[i]), c)
	}

	// Three equal weights do not divide evenly in binary.
	contribs["Salud"] = Contribution{Weight: 10, Summaries: common}
	got, err = Combine(contribs)
	require.NoError(t, err)
	for i, c := range got {
		assert.InDelta(t, common[i].Median, c.Median, 1e-12)
		assert.InDelta(t, common[i].P95, c.P95, 1e-12)
	}
}

func TestCombine_Weighted(t *testing.T) {
	got, err := Combine(map[string]Contribution{
		"A": {Weight: 60, Summaries: summaries(jan, 103)},
		"B": {Weight: 40, Summaries: summaries(jan, 97)},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 100.6, got[0].Median, 1e-12)
	assert.InDelta(t, 98.6, got[0].P5, 1e-12)
	assert.Equal(t, jan, got[0].Date)
}

func TestCombine_DateMismatch(t *testing.T) {
	_, err := Combine(map[string]Contribution{
		"A": {Weight: 1, Summaries: summaries(jan, 100, 101)},
		"B": {Weight: 1, Summaries: summaries(model.AddMonths(jan, 1), 100, 101)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFutureDateMismatch))

	var mismatch *FutureDateMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "B", mismatch.Category)
	assert.Equal(t, "A", mismatch.Reference)
	assert.Equal(t, 0, mismatch.Index)
	assert.Contains(t, err.Error(), "B")
}

func TestCombine_LengthMismatch(t *testing.T) {
	_, err := Combine(map[string]Contribution{
		"A": {Weight: 1, Summaries: summaries(jan, 100, 101, 102)},
		"B": {Weight: 1, Summaries: summaries(jan, 100, 101)},
	})
	var mismatch *FutureDateMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, -1, mismatch.Index)
	assert.Equal(t, 3, mismatch.WantLen)
	assert.Equal(t, 2, mismatch.GotLen)
}

func TestCombine_EmptySummariesFail(t *testing.T) {
	_, err := Combine(map[string]Contribution{
		"A": {Weight: 1},
	})
	assert.ErrorIs(t, err, ErrFutureDateMismatch)
}
