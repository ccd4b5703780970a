// Package cmd implements the ipcsim CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Env prefix:  %s_\n", config.EnvPrefix)
	fmt.Println()

	fmt.Println("  [General]")
	if path, ok := config.ResolveDataFile(cfg); ok {
		fmt.Printf("    Data file: %s\n", path)
	} else {
		fmt.Println("    Data file: not found")
	}
	fmt.Printf("    Quiet:     %v\n", cfg.General.Quiet)
	fmt.Println()

	fmt.Println("  [Simulation]")
	fmt.Printf("    Trials:  %d\n", cfg.Simulation.Trials)
	fmt.Printf("    Periods: %d\n", cfg.Simulation.Periods)
	if cfg.Simulation.Seed != 0 {
		fmt.Printf("    Seed:    %d\n", cfg.Simulation.Seed)
	} else {
		fmt.Println("    Seed:    new each run")
	}
	if cfg.Simulation.Workers > 0 {
		fmt.Printf("    Workers: %d\n", cfg.Simulation.Workers)
	} else {
		fmt.Println("    Workers: GOMAXPROCS")
	}
	if cfg.Simulation.ChangeFloor != nil {
		fmt.Printf("    Change floor: %g%%\n", *cfg.Simulation.ChangeFloor)
	} else {
		fmt.Println("    Change floor: none")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", cfg.Logging.Level)
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Addr: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Cache]")
	fmt.Printf("    Enabled: %v\n", cfg.Cache.Enabled)
	fmt.Printf("    Path:    %s\n", cachePath(cfg))
	fmt.Println()

	fmt.Println("  Run `ipcsim setup` to reconfigure.")
	return nil
}
