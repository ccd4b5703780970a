package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/convert"
)

var flagConvertOut string

var convertCmd = &cobra.Command{
	Use:   "convert IN",
	Short: "Convert a monthly bulletin sheet (CSV or XLSX) to index data JSON",
	Long: `Read a bulletin sheet where a cell like "ene-19" opens a month and the next
rows hold "ponderado;mensual" for the twelve COICOP divisions in order, and
write the JSON the projection commands load. An --out ending in .xlsx writes a
normalized workbook instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&flagConvertOut, "out", "o", "", "Output file (default IN with a .json extension)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(_ *cobra.Command, args []string) error {
	in := args[0]
	out := flagConvertOut
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".json"
	}
	if filepath.Clean(out) == filepath.Clean(in) {
		return fmt.Errorf("output %s would overwrite the input", out)
	}

	res, err := convert.ConvertFile(in)
	if err != nil {
		return fmt.Errorf("converting %s: %w", in, err)
	}
	if len(res.Periods) == 0 {
		return fmt.Errorf("%s: no month headers found", in)
	}
	if err := convert.WriteFile(out, res.Periods); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	if flagQuiet {
		return nil
	}
	first, last := res.Periods[0], res.Periods[len(res.Periods)-1]
	fmt.Fprintf(os.Stderr, "  Wrote %s: %d months (%s to %s), %s entries\n",
		out, len(res.Periods), first.Fecha, last.Fecha, cli.FormatNumber(int64(res.Entries())))
	if res.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.RenderWarning(fmt.Sprintf("%d rows with unreadable numbers skipped", res.Skipped)))
	}
	if res.Ignored > 0 {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.RenderMuted(fmt.Sprintf("%d rows past the last category ignored", res.Ignored)))
	}
	return nil
}
