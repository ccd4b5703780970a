package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/area"
	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/pipeline"
)

var flagArea = area.DefaultParams()

var areaCmd = &cobra.Command{
	Use:   "area",
	Short: "Monte Carlo estimate of a circular fire's burned area",
	RunE:  runArea,
}

func init() {
	f := areaCmd.Flags()
	f.Float64Var(&flagArea.Side, "side", flagArea.Side, "Forest side length (m)")
	f.Float64Var(&flagArea.Radius, "radius", flagArea.Radius, "Fire radius (m)")
	f.Float64Var(&flagArea.CenterX, "cx", flagArea.CenterX, "Fire centre x (m)")
	f.Float64Var(&flagArea.CenterY, "cy", flagArea.CenterY, "Fire centre y (m)")
	f.IntVarP(&flagArea.Points, "points", "n", flagArea.Points, "Random points to sample")
	rootCmd.AddCommand(areaCmd)
}

func runArea(_ *cobra.Command, _ []string) error {
	p := flagArea
	p.Seed = pipeline.ResolveSeed(flagSeed)

	res, err := area.Run(p)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BURNED AREA  %s points  seed %d", cli.FormatNumber(int64(p.Points)), p.Seed)))
	fmt.Println()

	rows := [][]string{
		{"Forest", fmt.Sprintf("%.0f x %.0f m (%.0f m²)", p.Side, p.Side, res.TotalArea)},
		{"Fire", fmt.Sprintf("r = %.1f m at (%.1f, %.1f)", p.Radius, p.CenterX, p.CenterY)},
		{cli.SeparatorRow},
		{"Points burned", fmt.Sprintf("%s (%s)", cli.FormatNumber(int64(res.Burned)), cli.FormatShare(res.Fraction()))},
		{"Estimated area", fmt.Sprintf("%.2f m²", res.Estimated)},
		{"Exact πr²", fmt.Sprintf("%.2f m²", res.Exact)},
		{"Relative error", fmt.Sprintf("%.2f%%", res.RelativeError*100)},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Estimate",
		Headers:  []string{"", ""},
		Rows:     rows,
		LeftCols: 2,
	}))
	fmt.Println()
	return nil
}
