package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/series"
	"github.com/theirongolddev/ipcsim/internal/store"
)

// CachedRunResult extends a projection with cache metadata.
type CachedRunResult struct {
	*model.Projection
	RunID string
	Hit   bool
}

// CacheKey identifies a run by the input file's path, size and mtime plus
// every parameter that affects the result.
func CacheKey(dataFile string, params model.Params) (string, error) {
	abs, err := filepath.Abs(dataFile)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dataFile, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", dataFile, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory; only single data files are cached", dataFile)
	}

	floor := "none"
	if params.ChangeFloor != nil {
		floor = fmt.Sprintf("%g", *params.ChangeFloor)
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%d\x00%d\x00%d\x00%d\x00%s\x00%s",
		abs, info.Size(), info.ModTime().UnixNano(),
		params.Trials, params.Periods, params.Seed,
		strings.ToLower(params.Filter), floor)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RunWithCache returns the cached projection for the same input and params
// when one exists, and otherwise runs and stores a fresh one. Cache failures
// are logged and fall back to an uncached run.
func RunWithCache(ctx context.Context, st *series.Store, dataFile string, params model.Params, cache *store.Cache, opts Options) (*CachedRunResult, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	key, err := CacheKey(dataFile, params)
	if err != nil {
		log.Warn().Err(err).Msg("cache key unavailable, running uncached")
		return runUncached(ctx, st, params, opts)
	}

	entry, ok, err := cache.Get(key)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("reading cache")
	case ok:
		log.Debug().Str("run_id", entry.RunID).Msg("projection served from cache")
		if opts.Progress != nil {
			n := len(entry.Projection.Categories) + len(entry.Projection.Skipped)
			opts.Progress(n, n)
		}
		return &CachedRunResult{Projection: entry.Projection, RunID: entry.RunID, Hit: true}, nil
	}

	proj, err := Run(ctx, st, params, opts)
	if err != nil {
		return nil, err
	}

	runID, err := cache.Put(key, dataFile, proj)
	if err != nil {
		log.Warn().Err(err).Msg("saving projection to cache")
	}
	return &CachedRunResult{Projection: proj, RunID: runID}, nil
}

func runUncached(ctx context.Context, st *series.Store, params model.Params, opts Options) (*CachedRunResult, error) {
	proj, err := Run(ctx, st, params, opts)
	if err != nil {
		return nil, err
	}
	return &CachedRunResult{Projection: proj}, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ipcsim")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "ipcsim")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "results.db")
}
