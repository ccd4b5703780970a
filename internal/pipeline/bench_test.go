package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/series"
	"github.com/theirongolddev/ipcsim/internal/simulate"
)

// benchStore builds twelve categories with five years of noisy history.
func benchStore(b *testing.B) *series.Store {
	b.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	var obs []model.Observation
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	for c := 0; c < 12; c++ {
		name := fmt.Sprintf("cat-%02d", c)
		for m := 0; m < 60; m++ {
			obs = append(obs, model.Observation{
				Date:          model.AddMonths(start, m),
				Category:      name,
				Weight:        float64(c + 1),
				MonthlyChange: model.Float(rng.NormFloat64()*0.5 + 0.3),
			})
		}
	}
	return series.NewStore(obs)
}

func BenchmarkRun(b *testing.B) {
	st := benchStore(b)
	params := model.Params{Trials: 1000, Periods: 12, Seed: 7}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(context.Background(), st, params, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRunSequential(b *testing.B) {
	st := benchStore(b)
	params := model.Params{Trials: 1000, Periods: 12, Seed: 7}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(context.Background(), st, params, Options{Workers: 1}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAggregate(b *testing.B) {
	st := benchStore(b)
	ser, _ := st.Series("cat-00")
	trajs, err := simulate.Simulate(ser, 5000, 24, rand.NewPCG(3, 4))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Aggregate(trajs)
	}
}
