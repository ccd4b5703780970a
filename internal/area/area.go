// Package area estimates the burned area of a circular forest fire by Monte
// Carlo sampling over a square forest.
package area

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/stat/distuv"
)

// Params describe the forest, the fire and the sample size.
type Params struct {
	Side    float64 `validate:"gt=0"`
	Radius  float64 `validate:"gt=0"`
	CenterX float64
	CenterY float64
	Points  int `validate:"gte=1,lte=100000000"`
	Seed    uint64
}

// DefaultParams is a 100 m forest with a 30 m fire at its centre.
func DefaultParams() Params {
	return Params{Side: 100, Radius: 30, CenterX: 50, CenterY: 50, Points: 10000}
}

// ErrInvalidParams wraps every validation failure.
var ErrInvalidParams = errors.New("invalid area parameters")

var validate = validator.New()

// Validate checks p.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s %v fails %q", ErrInvalidParams, fe.Field(), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// Result is the outcome of one estimate.
type Result struct {
	Params    Params
	TotalArea float64
	Burned    int // sampled points inside the fire
	Estimated float64
	// Exact is πr², ignoring any part of the circle outside the forest.
	Exact         float64
	RelativeError float64 // |estimated-exact| / exact
}

// Fraction returns the share of points inside the fire.
func (r Result) Fraction() float64 {
	return float64(r.Burned) / float64(r.Params.Points)
}

// Estimate samples p.Points uniform points and counts those within the fire
// radius (boundary inclusive). src is the only source of randomness.
func Estimate(p Params, src rand.Source) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	u := distuv.Uniform{Min: 0, Max: p.Side, Src: src}
	r2 := p.Radius * p.Radius

	burned := 0
	for i := 0; i < p.Points; i++ {
		x, y := u.Rand(), u.Rand()
		dx, dy := x-p.CenterX, y-p.CenterY
		if dx*dx+dy*dy <= r2 {
			burned++
		}
	}

	res := Result{
		Params:    p,
		TotalArea: p.Side * p.Side,
		Burned:    burned,
		Exact:     math.Pi * r2,
	}
	res.Estimated = res.Fraction() * res.TotalArea
	res.RelativeError = math.Abs(res.Estimated-res.Exact) / res.Exact
	return res, nil
}

// Run estimates with a PCG source seeded from p.Seed.
func Run(p Params) (Result, error) {
	return Estimate(p, rand.NewPCG(p.Seed, 0x61726561))
}
