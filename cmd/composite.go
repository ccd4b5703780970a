package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/pipeline"
	"github.com/theirongolddev/ipcsim/internal/report"
)

var flagBands bool

var compositeCmd = &cobra.Command{
	Use:   "composite",
	Short: "Weighted composite index projection (default command)",
	RunE:  runComposite,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, compositeCmd} {
		c.Flags().BoolVar(&flagBands, "bands", false, "Draw the P5..P95 band under each table")
	}
	rootCmd.AddCommand(compositeCmd)
}

func runComposite(cmd *cobra.Command, _ []string) error {
	proj, err := runProjection(cmd.Context())
	if err != nil {
		return err
	}

	if err := (report.Terminal{Bands: flagBands}).Report(os.Stdout, proj); err != nil {
		return err
	}

	rows := pipeline.ContributionBreakdown(proj)
	if len(rows) == 0 {
		return nil
	}
	maxAbs := 0.0
	for _, r := range rows {
		if a := max(r.Points, -r.Points); a > maxAbs {
			maxAbs = a
		}
	}
	table := cli.Table{
		Title:    "Contribution by category",
		Headers:  []string{"Category", "Weight", "Share", "Median", "Points", ""},
		LeftCols: 1,
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Category,
			cli.FormatWeight(r.Weight),
			cli.FormatShare(r.NormalizedWeight),
			cli.FormatIndex(r.Median),
			cli.ColorChange(fmt.Sprintf("%+.3f", r.Points), r.Points),
			cli.RenderSignedBar(r.Points, maxAbs, 10),
		})
	}
	fmt.Print(cli.RenderTable(table))
	fmt.Println()
	return nil
}
