// Package source discovers and parses price-index data files.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/ipcsim/internal/model"
)

// Accepted layouts for the "fecha" field, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseResult holds the output of parsing one data file.
type ParseResult struct {
	Observations []model.Observation
	Periods      int
	// ParseErrors counts rows that were dropped: missing category, bad date
	// or negative weight.
	ParseErrors int
	Err         error
}

// ParseFile reads a JSON data file shaped as a list of months, each holding
// per-category rows.
func ParseFile(path string) ParseResult {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	res := Parse(f)
	if res.Err != nil {
		res.Err = fmt.Errorf("parsing %s: %w", path, res.Err)
	}
	return res
}

// Parse decodes a data file from r. A malformed document is an error; bad
// rows inside a well-formed document are counted and skipped.
func Parse(r io.Reader) ParseResult {
	var periods []RawPeriod
	if err := json.NewDecoder(r).Decode(&periods); err != nil {
		return ParseResult{Err: err}
	}

	var res ParseResult
	res.Periods = len(periods)
	for _, p := range periods {
		date, err := ParseDate(p.Fecha)
		if err != nil {
			res.ParseErrors += len(p.Datos)
			continue
		}
		for _, e := range p.Datos {
			name := strings.TrimSpace(e.Categoria)
			if name == "" || e.Ponderado < 0 {
				res.ParseErrors++
				continue
			}
			res.Observations = append(res.Observations, model.Observation{
				Date:          date,
				Category:      name,
				Weight:        e.Ponderado,
				MonthlyChange: e.Mensual,
			})
		}
	}
	return res
}

// ParseDate parses a month date and truncates it to the first of the month.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
