package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/report"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the projection as JSON, CSV or YAML",
	Long: `Write the full result set: per-category summaries, skipped categories and
the composite. The format defaults to the --out file extension, then json.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "", "Output format: "+strings.Join(report.Formats, ", "))
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format := flagExportFormat
	if format == "" && flagExportOut != "" {
		format = strings.TrimPrefix(filepath.Ext(flagExportOut), ".")
	}
	if format == "" {
		format = "json"
	}
	reporter, err := report.New(format)
	if err != nil {
		return err
	}

	proj, err := runProjection(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if flagExportOut != "" {
		if err := os.MkdirAll(filepath.Dir(flagExportOut), 0o750); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
		f, err := os.Create(flagExportOut) //nolint:gosec // user-selected output path
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagExportOut, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := reporter.Report(w, proj); err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}
	if flagExportOut != "" && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %s\n", flagExportOut)
	}
	return nil
}
