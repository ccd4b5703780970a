// Package report renders projections for people and for other programs.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/theirongolddev/ipcsim/internal/model"
)

// Reporter writes a projection to w.
type Reporter interface {
	Report(w io.Writer, p *model.Projection) error
}

// Formats lists the names accepted by New.
var Formats = []string{"table", "json", "csv", "yaml"}

// New returns the reporter for a format name.
func New(format string) (Reporter, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return Terminal{Categories: true}, nil
	case "json":
		return JSON{Indent: true}, nil
	case "csv":
		return CSV{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// Statistic names in output column order.
var statNames = []string{"mean", "median", "p5", "p25", "p75", "p95"}

func statValues(s model.PeriodSummary) []float64 {
	return []float64{s.Mean, s.Median, s.P5, s.P25, s.P75, s.P95}
}
