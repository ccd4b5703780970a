package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/cli"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Categories in the data with their monthly-change history",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dataFile, err := resolveDataFile(cfg)
	if err != nil {
		return err
	}
	st, err := loadData(dataFile)
	if err != nil {
		return err
	}

	oldest, newest := st.Span()
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("IPC CATEGORIES  %s to %s", cli.FormatMonth(oldest), cli.FormatMonth(newest))))
	fmt.Println()

	filter := map[string]bool{}
	for _, name := range st.Filter(flagCategory) {
		filter[name] = true
	}

	rows := [][]string{}
	for _, d := range st.Describe() {
		if !filter[d.Category] {
			continue
		}
		ser, _ := st.Series(d.Category)
		rows = append(rows, []string{
			d.Category,
			cli.FormatNumber(int64(d.Observations)),
			cli.FormatWeight(d.CurrentWeight),
			optChange(d.Mean, d.WithChange > 0),
			optFloat(d.StdDev),
			optChange(d.Min, d.WithChange > 0),
			optChange(d.Median, d.WithChange > 0),
			optChange(d.Max, d.WithChange > 0),
			cli.RenderSparkline(lastN(ser.Changes(), 24)),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly change history",
		Headers: []string{"Category", "Obs", "Weight", "Mean", "SD", "Min", "Median", "Max", "Last 24m"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func optChange(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return cli.FormatChange(v)
}

func optFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func lastN(xs []float64, n int) []float64 {
	if len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}
