package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/config"
	"github.com/theirongolddev/ipcsim/internal/logging"
	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/pipeline"
	"github.com/theirongolddev/ipcsim/internal/series"
	"github.com/theirongolddev/ipcsim/internal/source"
	"github.com/theirongolddev/ipcsim/internal/store"
)

var (
	flagDataFile    string
	flagTrials      int
	flagPeriods     int
	flagSeed        uint64
	flagCategory    string
	flagWorkers     int
	flagFloorChange float64
	flagNoCache     bool
	flagQuiet       bool
	flagLogLevel    string
	flagPreset      string
)

var rootCmd = &cobra.Command{
	Use:   "ipcsim",
	Short: "Monte Carlo projections of a consumer price index",
	Long: `Project monthly consumer price index changes per category with Monte Carlo
simulation, and combine them by weight into a composite index.`,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Assigned in init: runComposite reads rootCmd flags through loadConfig.
	rootCmd.RunE = runComposite

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDataFile, "data", "f", "", "Index data: converter JSON output or a directory of them")
	pf.IntVarP(&flagTrials, "trials", "t", 0, "Monte Carlo trials per category (default from config)")
	pf.IntVarP(&flagPeriods, "periods", "p", 0, "Months to project ahead (default from config)")
	pf.Uint64Var(&flagSeed, "seed", 0, "Random seed; 0 picks a new one each run")
	pf.StringVarP(&flagCategory, "category", "c", "", "Only project categories matching this substring")
	pf.IntVar(&flagWorkers, "workers", 0, "Categories simulated at once (0 = GOMAXPROCS)")
	pf.Float64Var(&flagFloorChange, "floor-change", 0, "Clamp drawn monthly changes below this percent")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite result cache")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
	pf.StringVar(&flagPreset, "preset", "", "Simulation size preset: quick, default, extended, thorough")
}

// loadConfig reads config.toml and the environment, then applies flags that
// were set explicitly.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	if flagPreset != "" {
		p, ok := config.LookupPreset(flagPreset)
		if !ok {
			return cfg, fmt.Errorf("unknown preset %q", flagPreset)
		}
		p.Apply(&cfg)
	}

	pf := rootCmd.PersistentFlags()
	if pf.Changed("data") {
		cfg.General.DataFile = flagDataFile
	}
	if pf.Changed("trials") {
		cfg.Simulation.Trials = flagTrials
	}
	if pf.Changed("periods") {
		cfg.Simulation.Periods = flagPeriods
	}
	if pf.Changed("seed") {
		cfg.Simulation.Seed = flagSeed
	}
	if pf.Changed("workers") {
		cfg.Simulation.Workers = flagWorkers
	}
	if pf.Changed("floor-change") {
		floor := flagFloorChange
		cfg.Simulation.ChangeFloor = &floor
	}
	if pf.Changed("quiet") {
		cfg.General.Quiet = flagQuiet
	}
	if pf.Changed("log-level") {
		cfg.Logging.Level = flagLogLevel
	}
	if pf.Changed("no-cache") && flagNoCache {
		cfg.Cache.Enabled = false
	}

	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	flagQuiet = cfg.General.Quiet
	return cfg, nil
}

func newLogger(cfg config.Config) (zerolog.Logger, error) {
	return logging.New(cfg.Logging, os.Stderr)
}

// resolveDataFile finds the index data or explains where it was looked for.
func resolveDataFile(cfg config.Config) (string, error) {
	path, ok := config.ResolveDataFile(cfg)
	if !ok {
		return "", errors.New("no index data found; pass --data or set general.data_file (run `ipcsim convert` to build one)")
	}
	return path, nil
}

// loadData is the shared data loading path used by all commands.
func loadData(dataFile string) (*series.Store, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading %s...\n", dataFile)
	}

	result, err := source.Load(dataFile)
	if err != nil {
		return nil, err
	}
	if len(result.Observations) == 0 {
		return nil, fmt.Errorf("%s: no observations loaded", dataFile)
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loaded %s observations over %d periods",
			cli.FormatNumber(int64(len(result.Observations))), result.Periods)
		if result.TotalFiles > 1 {
			fmt.Fprintf(os.Stderr, " from %d files", result.ParsedFiles)
		}
		fmt.Fprintln(os.Stderr)
		if result.ParseErrors > 0 {
			fmt.Fprintf(os.Stderr, "  %s\n", cli.RenderWarning(fmt.Sprintf("%d records skipped", result.ParseErrors)))
		}
	}
	return series.NewStore(result.Observations), nil
}

// paramsFromConfig builds run params. The seed is resolved here so the same
// value is printed, cached and reproducible.
func paramsFromConfig(cfg config.Config) model.Params {
	return model.Params{
		Trials:      cfg.Simulation.Trials,
		Periods:     cfg.Simulation.Periods,
		Seed:        pipeline.ResolveSeed(cfg.Simulation.Seed),
		Filter:      flagCategory,
		ChangeFloor: cfg.Simulation.ChangeFloor,
	}
}

// cacheEnabled reports whether results for cfg may come from the cache.
// Time-seeded runs are never cached.
func cacheEnabled(cfg config.Config) bool {
	return cfg.Cache.Enabled && !flagNoCache && cfg.Simulation.Seed != 0
}

func cachePath(cfg config.Config) string {
	if cfg.Cache.Path != "" {
		return cfg.Cache.Path
	}
	return pipeline.CachePath()
}

// runProjection loads the data and runs one projection, through the result
// cache when the seed is explicit.
func runProjection(ctx context.Context) (*model.Projection, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	dataFile, err := resolveDataFile(cfg)
	if err != nil {
		return nil, err
	}
	st, err := loadData(dataFile)
	if err != nil {
		return nil, err
	}

	params := paramsFromConfig(cfg)
	opts := pipeline.Options{
		Workers: cfg.Simulation.Workers,
		Logger:  &log,
		Progress: func(current, total int) {
			if flagQuiet {
				return
			}
			fmt.Fprintf(os.Stderr, "\r  Simulating %s", cli.RenderProgressBar(current, total, 30))
		},
	}
	done := func(note string) {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "\r  %-60s\n", note)
		}
	}

	if cacheEnabled(cfg) {
		cache, err := store.Open(cachePath(cfg))
		if err != nil {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, running fresh\n")
			}
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.RunWithCache(ctx, st, dataFile, params, cache, opts)
			if err != nil {
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "\n  Cache error, falling back to a fresh run\n")
				}
			} else {
				if cr.Hit {
					done("Loaded from cache (run " + cr.RunID + ")")
				} else {
					done("Simulated and cached")
				}
				return cr.Projection, nil
			}
		}
	}

	proj, err := pipeline.Run(ctx, st, params, opts)
	if err != nil {
		return nil, err
	}
	done(fmt.Sprintf("Simulated %d categories", len(proj.Categories)+len(proj.Skipped)))
	return proj, nil
}
