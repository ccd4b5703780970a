package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DefaultConfig()
	if cfg.Simulation != want.Simulation || cfg.Appearance != want.Appearance {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFrom_TOMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
[general]
data_file = "data/ipc.json"

[simulation]
trials = 5000
periods = 24
seed = 42
change_floor = -100.0

[logging]
level = "info"
format = "json"
`)
	t.Setenv("IPCSIM_SIMULATION_PERIODS", "36")
	t.Setenv("IPCSIM_GENERAL_QUIET", "true")
	// Unprefixed names must be ignored.
	t.Setenv("TRIALS", "7")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.Trials != 5000 {
		t.Errorf("Trials = %d, want 5000 from file", cfg.Simulation.Trials)
	}
	if cfg.Simulation.Periods != 36 {
		t.Errorf("Periods = %d, want 36 from env", cfg.Simulation.Periods)
	}
	if cfg.Simulation.Seed != 42 {
		t.Errorf("Seed = %d", cfg.Simulation.Seed)
	}
	if cfg.Simulation.ChangeFloor == nil || *cfg.Simulation.ChangeFloor != -100 {
		t.Errorf("ChangeFloor = %v", cfg.Simulation.ChangeFloor)
	}
	if !cfg.General.Quiet {
		t.Error("Quiet should come from env")
	}
	if cfg.General.DataFile != "data/ipc.json" {
		t.Errorf("DataFile = %q", cfg.General.DataFile)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q", cfg.Logging.Format)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Errorf("Theme = %q, want default kept", cfg.Appearance.Theme)
	}
}

func TestLoadFrom_EnvChangeFloor(t *testing.T) {
	t.Setenv("IPCSIM_SIMULATION_CHANGE_FLOOR", "-50")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simulation.ChangeFloor == nil || *cfg.Simulation.ChangeFloor != -50 {
		t.Errorf("ChangeFloor = %v, want -50", cfg.Simulation.ChangeFloor)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	path := writeConfig(t, `
[simulation]
trials = 0
periods = 12

[appearance]
theme = "neon"
`)
	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"simulation.trials", "appearance.theme"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should mention %s", msg, want)
		}
	}
}

func TestLoadFrom_BadTOML(t *testing.T) {
	path := writeConfig(t, "[simulation\ntrials = 1")
	if _, err := LoadFrom(path); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("err = %v", err)
	}
}

func TestValidate_FloorBelowMinusHundred(t *testing.T) {
	cfg := DefaultConfig()
	floor := -150.0
	cfg.Simulation.ChangeFloor = &floor
	if err := Validate(cfg); err == nil {
		t.Error("floor below -100 should be rejected")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if Exists() {
		t.Fatal("config should not exist yet")
	}
	cfg := DefaultConfig()
	cfg.Simulation.Trials = 2500
	cfg.Appearance.Theme = "terminal"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("config should exist after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Simulation.Trials != 2500 || got.Appearance.Theme != "terminal" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	if len(names) != len(Presets) || names[0] != "quick" {
		t.Errorf("PresetNames = %v", names)
	}

	p, ok := LookupPreset(" Extended ")
	if !ok {
		t.Fatal("extended preset missing")
	}
	cfg := DefaultConfig()
	p.Apply(&cfg)
	if cfg.Simulation.Trials != 5000 || cfg.Simulation.Periods != 24 {
		t.Errorf("after Apply: %+v", cfg.Simulation)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("preset produced invalid config: %v", err)
	}
	if _, ok := LookupPreset("huge"); ok {
		t.Error("unknown preset found")
	}
}

func TestResolveDataFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.DataFile = "explicit.json"
	if got, ok := ResolveDataFile(cfg); !ok || got != "explicit.json" {
		t.Errorf("configured path = %q, %v", got, ok)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := Dir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "output.json")
	if err := os.WriteFile(want, []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg.General.DataFile = ""
	got, ok := ResolveDataFile(cfg)
	if !ok || got != want {
		t.Errorf("ResolveDataFile = %q, %v; want %q", got, ok, want)
	}
}
