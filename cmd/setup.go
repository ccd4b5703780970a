package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/config"
	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// A broken config should not block rewriting it.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %s\n", err)
		cfg = config.DefaultConfig()
	}

	preset := "default"
	for _, name := range config.PresetNames() {
		p := config.Presets[name]
		if p.Trials == cfg.Simulation.Trials && p.Periods == cfg.Simulation.Periods {
			preset = name
		}
	}
	dataFile := cfg.General.DataFile
	if dataFile == "" {
		if found, ok := config.ResolveDataFile(cfg); ok {
			dataFile = found
		}
	}
	seed := ""
	if cfg.Simulation.Seed != 0 {
		seed = strconv.FormatUint(cfg.Simulation.Seed, 10)
	}
	floor := ""
	if cfg.Simulation.ChangeFloor != nil {
		floor = strconv.FormatFloat(*cfg.Simulation.ChangeFloor, 'f', -1, 64)
	}
	themeName := cfg.Appearance.Theme
	cacheOn := cfg.Cache.Enabled

	presetOpts := make([]huh.Option[string], 0, len(config.Presets))
	for _, name := range config.PresetNames() {
		p := config.Presets[name]
		presetOpts = append(presetOpts, huh.NewOption(
			fmt.Sprintf("%-9s %6d trials, %2d months  %s", p.Name, p.Trials, p.Periods, p.Description), p.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to ipcsim").
				Description("Defaults for every projection command. Saved to "+config.Path()),
			huh.NewInput().
				Title("Index data file").
				Description("JSON from `ipcsim convert`, or a directory of them").
				Value(&dataFile).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := os.Stat(strings.TrimSpace(s)); err != nil {
						return errors.New("file not found")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Simulation size").
				Options(presetOpts...).
				Value(&preset),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Seed").
				Description("Leave empty for a new seed every run; fixed seeds are cached").
				Value(&seed).
				Validate(func(s string) error {
					if s = strings.TrimSpace(s); s == "" {
						return nil
					}
					if _, err := strconv.ParseUint(s, 10, 64); err != nil {
						return errors.New("must be an unsigned integer")
					}
					return nil
				}),
			huh.NewInput().
				Title("Monthly change floor (%)").
				Description("Clamp simulated monthly changes below this value; empty for none").
				Value(&floor).
				Validate(func(s string) error {
					if s = strings.TrimSpace(s); s == "" {
						return nil
					}
					f, err := strconv.ParseFloat(s, 64)
					if err != nil || f < -100 {
						return errors.New("must be a number >= -100")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&themeName),
			huh.NewConfirm().
				Title("Cache results of fixed-seed runs?").
				Value(&cacheOn),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	cfg.General.DataFile = strings.TrimSpace(dataFile)
	if p, ok := config.LookupPreset(preset); ok {
		p.Apply(&cfg)
	}
	cfg.Simulation.Seed = 0
	if s := strings.TrimSpace(seed); s != "" {
		cfg.Simulation.Seed, _ = strconv.ParseUint(s, 10, 64)
	}
	cfg.Simulation.ChangeFloor = nil
	if s := strings.TrimSpace(floor); s != "" {
		f, _ := strconv.ParseFloat(s, 64)
		cfg.Simulation.ChangeFloor = &f
	}
	cfg.Appearance.Theme = themeName
	cfg.Cache.Enabled = cacheOn

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `ipcsim setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
