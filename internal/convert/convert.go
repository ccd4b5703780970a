// Package convert turns spreadsheet exports of the monthly index bulletin
// into the JSON data file read by package source.
//
// The bulletin layout is one block per month: a row whose first cell is the
// month ("ene-19", "sept-23") followed by one "ponderado;mensual" row per
// category, in the fixed COICOP order of Categories.
package convert

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ipcsim/internal/source"
)

// Categories are assigned to data rows by position within a month block.
var Categories = [...]string{
	"Alimentos Y Bebidas No Alcohólicas",
	"Bebidas Alcohólicas Y Tabaco",
	"Prendas De Vestir Y Calzado",
	"Alojamiento, Agua, Electricidad, Gas Y Otros Combustibles",
	"Muebles, Artículos Para El Hogar Y Para La Conservación Ordinaria Del Hogar",
	"Salud",
	"Transporte",
	"Información Y Comunicación",
	"Recreación Y Cultura",
	"Educación",
	"Restaurantes Y Hoteles",
	"Bienes Y Servicios Diversos",
}

var months = map[string]time.Month{
	"ene": time.January, "feb": time.February, "mar": time.March,
	"abr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "sep": time.September,
	"sept": time.September, "set": time.September, "oct": time.October,
	"nov": time.November, "dic": time.December,
}

// Result is the outcome of converting one sheet.
type Result struct {
	Periods []source.RawPeriod
	// Skipped counts data rows whose numbers could not be parsed.
	Skipped int
	// Ignored counts data rows beyond the last category of a month.
	Ignored int
}

// Entries returns the number of category rows across all periods.
func (r Result) Entries() int {
	n := 0
	for _, p := range r.Periods {
		n += len(p.Datos)
	}
	return n
}

// ParseMonth parses a month header cell such as "ene-19" or "Sept-2023".
// Two-digit years are in the 2000s.
func ParseMonth(cell string) (time.Time, bool) {
	cell = strings.ToLower(strings.TrimSpace(strings.TrimRight(cell, "; ")))
	abbr, year, ok := strings.Cut(cell, "-")
	if !ok {
		return time.Time{}, false
	}
	m, ok := months[abbr]
	if !ok {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 0 {
		return time.Time{}, false
	}
	switch len(year) {
	case 2:
		y += 2000
	case 4:
	default:
		return time.Time{}, false
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), true
}

// ParseNumber parses a bulletin number, which uses a decimal comma.
func ParseNumber(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, fmt.Errorf("empty number")
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(cell, ",", "."))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// FromRows converts sheet rows in bulletin layout. Rows before the first
// month header and rows with an empty first cell are ignored silently.
func FromRows(rows [][]string) Result {
	var res Result
	var current *source.RawPeriod

	flush := func() {
		if current != nil && len(current.Datos) > 0 {
			res.Periods = append(res.Periods, *current)
		}
		current = nil
	}

	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if date, ok := ParseMonth(row[0]); ok {
			flush()
			current = &source.RawPeriod{Fecha: date.Format("2006-01-02")}
			continue
		}
		if current == nil || len(row) < 2 {
			continue
		}

		ponderado, err := ParseNumber(row[0])
		if err != nil {
			res.Skipped++
			continue
		}
		var mensual *float64
		if strings.TrimSpace(row[1]) != "" {
			v, err := ParseNumber(row[1])
			if err != nil {
				res.Skipped++
				continue
			}
			mensual = &v
		}

		if len(current.Datos) >= len(Categories) {
			res.Ignored++
			continue
		}
		current.Datos = append(current.Datos, source.RawEntry{
			Categoria: Categories[len(current.Datos)],
			Ponderado: ponderado,
			Mensual:   mensual,
		})
	}
	flush()
	return res
}

// ToRows renders periods back into bulletin layout, with decimal commas.
func ToRows(periods []source.RawPeriod) [][]string {
	var rows [][]string
	for _, p := range periods {
		header := p.Fecha
		if t, err := time.Parse("2006-01-02", p.Fecha); err == nil {
			header = fmt.Sprintf("%s-%02d", monthAbbr(t.Month()), t.Year()%100)
		}
		rows = append(rows, []string{header, ""})
		for _, e := range p.Datos {
			mensual := ""
			if e.Mensual != nil {
				mensual = commaNumber(*e.Mensual)
			}
			rows = append(rows, []string{commaNumber(e.Ponderado), mensual})
		}
	}
	return rows
}

func monthAbbr(m time.Month) string {
	for abbr, mm := range months {
		// "sep" and "set" are accepted on input; "sept" is what the bulletin prints.
		if mm == m && (m != time.September || abbr == "sept") {
			return abbr
		}
	}
	return ""
}

func commaNumber(v float64) string {
	return strings.ReplaceAll(decimal.NewFromFloat(v).String(), ".", ",")
}

// WriteJSON writes periods as an indented data file.
func WriteJSON(w io.Writer, periods []source.RawPeriod) error {
	if periods == nil {
		periods = []source.RawPeriod{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(periods)
}
