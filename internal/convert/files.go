package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/ipcsim/internal/source"
)

// ReadCSV converts a ';'-separated bulletin export.
func ReadCSV(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return FromRows(rows), nil
}

// ReadXLSX converts the first sheet of a workbook.
func ReadXLSX(path string) (Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Result{}, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	// GetRows drops trailing empty cells; a blank mensual must still count.
	for i, row := range rows {
		if len(row) == 1 {
			rows[i] = append(row, "")
		}
	}
	return FromRows(rows), nil
}

// ConvertFile picks the reader from the file extension.
func ConvertFile(path string) (Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return Result{}, err
		}
		defer func() { _ = f.Close() }()
		return ReadCSV(f)
	}
	return Result{}, fmt.Errorf("unsupported input %s (want .csv or .xlsx)", filepath.Base(path))
}

// WriteXLSX writes periods to a single-sheet workbook in bulletin layout.
func WriteXLSX(path string, periods []source.RawPeriod) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sheet1"
	for i, row := range ToRows(periods) {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// WriteFile writes periods to path, as a workbook for .xlsx and as JSON
// otherwise.
func WriteFile(path string, periods []source.RawPeriod) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(path, periods)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, periods); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
