package config

import (
	"sort"
	"strings"
)

// Preset is a named pair of simulation sizes offered by setup and --preset.
type Preset struct {
	Name        string
	Trials      int
	Periods     int
	Description string
}

// Presets maps preset names to their sizes.
var Presets = map[string]Preset{
	"quick": {
		Name: "quick", Trials: 200, Periods: 6,
		Description: "fast look, wide bands",
	},
	"default": {
		Name: "default", Trials: 1000, Periods: 12,
		Description: "one year ahead",
	},
	"extended": {
		Name: "extended", Trials: 5000, Periods: 24,
		Description: "two years ahead",
	},
	"thorough": {
		Name: "thorough", Trials: 20000, Periods: 36,
		Description: "three years ahead, tight percentiles",
	},
}

// PresetNames returns preset names ordered by trial count.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return Presets[names[i]].Trials < Presets[names[j]].Trials
	})
	return names
}

// LookupPreset finds a preset by case-insensitive name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Apply copies the preset sizes into cfg.
func (p Preset) Apply(cfg *Config) {
	cfg.Simulation.Trials = p.Trials
	cfg.Simulation.Periods = p.Periods
}
