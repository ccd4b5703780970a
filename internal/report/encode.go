package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/theirongolddev/ipcsim/internal/model"
)

// JSON writes the projection as one JSON document.
type JSON struct {
	Indent bool
}

// Report implements Reporter.
func (j JSON) Report(w io.Writer, p *model.Projection) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(withCompositeError(p))
}

// CSV writes one row per (scope, month): the composite first, then every
// category in result order.
type CSV struct{}

// CSVHeader is the first row written by CSV.
var CSVHeader = append([]string{"scope", "category", "weight", "date"}, statNames...)

// Report implements Reporter.
func (CSV) Report(w io.Writer, p *model.Projection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, c := range p.Composite {
		if err := cw.Write(csvRow("composite", "", 100, model.PeriodSummary(c))); err != nil {
			return err
		}
	}
	for _, cat := range p.Categories {
		for _, s := range cat.Summaries {
			if err := cw.Write(csvRow("category", cat.Category, cat.Weight, s)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(scope, category string, weight float64, s model.PeriodSummary) []string {
	row := []string{scope, category, formatFloat(weight), s.Date.Format("2006-01-02")}
	for _, v := range statValues(s) {
		row = append(row, formatFloat(v))
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// YAML writes the projection as a YAML document.
type YAML struct{}

type yamlStats struct {
	Date   string  `yaml:"date"`
	Mean   float64 `yaml:"mean"`
	Median float64 `yaml:"median"`
	P5     float64 `yaml:"p5"`
	P25    float64 `yaml:"p25"`
	P75    float64 `yaml:"p75"`
	P95    float64 `yaml:"p95"`
}

type yamlCategory struct {
	Category     string      `yaml:"category"`
	Weight       float64     `yaml:"weight"`
	Observations int         `yaml:"observations"`
	Mean         float64     `yaml:"mean_change"`
	StdDev       float64     `yaml:"stddev"`
	Floored      bool        `yaml:"floored,omitempty"`
	Summaries    []yamlStats `yaml:"summaries"`
}

type yamlDoc struct {
	Trials         int                `yaml:"trials"`
	Periods        int                `yaml:"periods"`
	Seed           uint64             `yaml:"seed"`
	Filter         string             `yaml:"filter,omitempty"`
	ChangeFloor    *float64           `yaml:"change_floor,omitempty"`
	GeneratedAt    string             `yaml:"generated_at"`
	Weights        map[string]float64 `yaml:"normalized_weights,omitempty"`
	Composite      []yamlStats        `yaml:"composite,omitempty"`
	CompositeError string             `yaml:"composite_error,omitempty"`
	Categories     []yamlCategory     `yaml:"categories"`
	Skipped        []model.Skipped    `yaml:"skipped,omitempty"`
}

// Report implements Reporter.
func (YAML) Report(w io.Writer, p *model.Projection) error {
	p = withCompositeError(p)
	doc := yamlDoc{
		Trials:         p.Params.Trials,
		Periods:        p.Params.Periods,
		Seed:           p.Params.Seed,
		Filter:         p.Params.Filter,
		ChangeFloor:    p.Params.ChangeFloor,
		GeneratedAt:    p.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Weights:        p.NormalizedWeights,
		CompositeError: p.CompositeError,
	}
	for _, c := range p.Composite {
		doc.Composite = append(doc.Composite, toYAMLStats(model.PeriodSummary(c)))
	}
	for _, c := range p.Categories {
		yc := yamlCategory{
			Category:     c.Category,
			Weight:       c.Weight,
			Observations: c.Observations,
			Mean:         c.Distribution.Mean,
			StdDev:       c.Distribution.StdDev,
			Floored:      c.Distribution.Floored,
		}
		for _, s := range c.Summaries {
			yc.Summaries = append(yc.Summaries, toYAMLStats(s))
		}
		doc.Categories = append(doc.Categories, yc)
	}
	doc.Skipped = p.Skipped

	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func toYAMLStats(s model.PeriodSummary) yamlStats {
	return yamlStats{
		Date: s.Date.Format("2006-01"), Mean: s.Mean, Median: s.Median,
		P5: s.P5, P25: s.P25, P75: s.P75, P95: s.P95,
	}
}

// withCompositeError copies CompositeErr into its serializable string field.
func withCompositeError(p *model.Projection) *model.Projection {
	if p.CompositeErr == nil || p.CompositeError != "" {
		return p
	}
	cp := *p
	cp.CompositeError = p.CompositeErr.Error()
	return &cp
}
