package area

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_Defaults(t *testing.T) {
	p := DefaultParams()
	p.Seed = 7

	res, err := Run(p)
	require.NoError(t, err)

	assert.Equal(t, 10000.0, res.TotalArea)
	assert.InDelta(t, math.Pi*900, res.Exact, 1e-9)
	// Standard error of the estimate is about 46 m² at 10000 points.
	assert.InDelta(t, res.Exact, res.Estimated, 250)
	assert.Less(t, res.RelativeError, 0.1)
	assert.InDelta(t, res.Fraction()*res.TotalArea, res.Estimated, 1e-9)
}

func TestEstimate_Deterministic(t *testing.T) {
	p := DefaultParams()
	a, err := Estimate(p, rand.NewPCG(1, 2))
	require.NoError(t, err)
	b, err := Estimate(p, rand.NewPCG(1, 2))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEstimate_CoveringFire(t *testing.T) {
	// A fire whose radius exceeds the forest diagonal burns every point.
	p := Params{Side: 10, Radius: 20, CenterX: 5, CenterY: 5, Points: 500}
	res, err := Run(p)
	require.NoError(t, err)
	assert.Equal(t, 500, res.Burned)
	assert.Equal(t, 100.0, res.Estimated)
}

func TestEstimate_FireOutsideForest(t *testing.T) {
	p := Params{Side: 10, Radius: 1, CenterX: 100, CenterY: 100, Points: 500}
	res, err := Run(p)
	require.NoError(t, err)
	assert.Zero(t, res.Burned)
	assert.InDelta(t, 1.0, res.RelativeError, 1e-12)
}

func TestValidate(t *testing.T) {
	for _, p := range []Params{
		{Side: 0, Radius: 1, Points: 1},
		{Side: 1, Radius: -1, Points: 1},
		{Side: 1, Radius: 1, Points: 0},
	} {
		_, err := Run(p)
		assert.ErrorIs(t, err, ErrInvalidParams, "%+v", p)
	}
}
