package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/ipcsim/internal/config"
	"github.com/theirongolddev/ipcsim/internal/model"
)

const sheet = `ene-24;
25,0;0,5
10,0;-0,2
feb-24;
25,0;0,7
10,0;-0,1
mar-24;
25,0;0,4
10,0;-0,3
`

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func execute(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("ipcsim %v: %v", args, err)
	}
}

func TestCacheEnabledNeedsExplicitSeed(t *testing.T) {
	flagNoCache = false
	cfg := config.DefaultConfig()
	if cacheEnabled(cfg) {
		t.Error("time-seeded runs must not be cached")
	}
	cfg.Simulation.Seed = 42
	if !cacheEnabled(cfg) {
		t.Error("explicit seed with cache enabled should use the cache")
	}
	cfg.Cache.Enabled = false
	if cacheEnabled(cfg) {
		t.Error("disabled cache should not be used")
	}
}

func TestCachePathOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.Path = "/tmp/x.db"
	if got := cachePath(cfg); got != "/tmp/x.db" {
		t.Errorf("cachePath = %q", got)
	}
}

func TestConvertThenExport(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "bulletin.csv")
	if err := os.WriteFile(in, []byte(sheet), 0o600); err != nil {
		t.Fatal(err)
	}
	data := filepath.Join(dir, "output.json")
	out := filepath.Join(dir, "projection.json")

	execute(t, "convert", in, "--out", data, "-q")
	execute(t, "export", "--data", data, "--trials", "50", "--periods", "2",
		"--seed", "5", "--no-cache", "-q", "--out", out)

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var proj model.Projection
	if err := json.Unmarshal(raw, &proj); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if proj.Params.Seed != 5 || proj.Params.Trials != 50 {
		t.Errorf("params = %+v", proj.Params)
	}
	if len(proj.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(proj.Categories))
	}
	if len(proj.Composite) != 2 {
		t.Errorf("composite periods = %d, want 2", len(proj.Composite))
	}
	if proj.CompositeError != "" {
		t.Errorf("unexpected composite error %q", proj.CompositeError)
	}
}

func TestRootRunsComposite(t *testing.T) {
	isolate(t)
	if rootCmd.RunE == nil {
		t.Fatal("root command has no default action")
	}
	dir := t.TempDir()
	in := filepath.Join(dir, "bulletin.csv")
	if err := os.WriteFile(in, []byte(sheet), 0o600); err != nil {
		t.Fatal(err)
	}
	data := filepath.Join(dir, "output.json")

	execute(t, "convert", in, "--out", data, "-q")
	execute(t, "--data", data, "--trials", "50", "--periods", "2", "--seed", "5", "--no-cache", "-q")
}
