package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/report"
)

var flagProjectBands bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Per-category projections with the composite",
	RunE:  runProject,
}

func init() {
	projectCmd.Flags().BoolVar(&flagProjectBands, "bands", false, "Draw the P5..P95 band under each table")
	rootCmd.AddCommand(projectCmd)
}

func runProject(cmd *cobra.Command, _ []string) error {
	proj, err := runProjection(cmd.Context())
	if err != nil {
		return err
	}
	return report.Terminal{Categories: true, Bands: flagProjectBands}.Report(os.Stdout, proj)
}
