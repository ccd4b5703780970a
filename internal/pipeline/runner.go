package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/series"
	"github.com/theirongolddev/ipcsim/internal/simulate"
)

// ProgressFunc is called as categories finish.
// current is the number of categories processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Options control how a run is executed. None of them change the result.
type Options struct {
	// Workers bounds the number of categories simulated at once.
	// Zero means GOMAXPROCS.
	Workers  int
	Progress ProgressFunc
	Logger   *zerolog.Logger
}

type outcome struct {
	result  *model.CategoryResult
	skipped *model.Skipped
}

// Run projects every category in st (narrowed by params.Filter) and combines
// them into the weighted composite. Categories with too little history are
// skipped and listed in the result. A composite failure is reported through
// Projection.CompositeErr; per-category results are kept.
func Run(ctx context.Context, st *series.Store, params model.Params, opts Options) (*model.Projection, error) {
	if params.Trials <= 0 || params.Periods <= 0 {
		return nil, fmt.Errorf("trials=%d periods=%d: %w", params.Trials, params.Periods, ErrEmptyInput)
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	names := st.Filter(params.Filter)
	proj := &model.Projection{
		Params:      params,
		GeneratedAt: time.Now().UTC(),
	}

	start := time.Now()
	outcomes := make([]outcome, len(names))

	numWorkers := opts.Workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(names) {
		numWorkers = len(names)
	}

	var processed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(numWorkers, 1))
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = projectCategory(st, name, params)
			n := processed.Add(1)
			if opts.Progress != nil {
				opts.Progress(int(n), len(names))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("projecting categories: %w", err)
	}

	contribs := make(map[string]Contribution, len(names))
	for _, o := range outcomes {
		if o.skipped != nil {
			log.Warn().
				Str("category", o.skipped.Category).
				Int("observations", o.skipped.Observations).
				Str("reason", o.skipped.Reason).
				Msg("skipping category")
			proj.Skipped = append(proj.Skipped, *o.skipped)
			continue
		}
		proj.Categories = append(proj.Categories, *o.result)
		contribs[o.result.Category] = Contribution{Weight: o.result.Weight, Summaries: o.result.Summaries}
	}

	log.Debug().
		Int("categories", len(proj.Categories)).
		Int("skipped", len(proj.Skipped)).
		Int("trials", params.Trials).
		Int("periods", params.Periods).
		Dur("elapsed", time.Since(start)).
		Msg("categories projected")

	setComposite(proj, contribs)
	if proj.CompositeErr != nil {
		log.Warn().Err(proj.CompositeErr).Msg("composite not computed")
	}
	return proj, nil
}

func setComposite(proj *model.Projection, contribs map[string]Contribution) {
	if len(contribs) == 0 {
		proj.CompositeErr = fmt.Errorf("no category could be simulated: %w", ErrEmptyInput)
		proj.CompositeError = proj.CompositeErr.Error()
		return
	}

	composite, err := Combine(contribs)
	if err != nil {
		proj.CompositeErr = err
		proj.CompositeError = err.Error()
		return
	}
	weights := make(map[string]float64, len(contribs))
	for name, c := range contribs {
		weights[name] = c.Weight
	}
	// Combine already validated the total weight.
	proj.NormalizedWeights, _ = NormalizeWeights(weights)
	proj.Composite = composite
}

func projectCategory(st *series.Store, name string, params model.Params) outcome {
	ser, _ := st.Series(name)
	weight, _ := st.CurrentWeight(name)

	dist, err := simulate.Estimate(ser)
	if errors.Is(err, simulate.ErrInsufficientData) {
		return outcome{skipped: &model.Skipped{
			Category:     name,
			Observations: ser.Len(),
			Reason:       err.Error(),
		}}
	}

	trajectories := simulate.Draw(
		dist,
		simulate.FutureDates(ser, params.Periods),
		params.Trials,
		simulate.NewSource(params.Seed, name),
		simulate.WithChangeFloor(params.ChangeFloor),
	)
	return outcome{result: &model.CategoryResult{
		Category:     name,
		Weight:       weight,
		Observations: ser.Len(),
		Distribution: dist,
		Summaries:    Aggregate(trajectories),
	}}
}

// ResolveSeed returns seed, or a time-derived seed when seed is zero.
func ResolveSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return uint64(time.Now().UnixNano())
}
