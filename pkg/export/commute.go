// Package export writes the commute dataset and the telework report in the
// formats read by the reporting workbook.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/core/model"
)

// CommuteSheet is the worksheet holding the commute dataset.
const CommuteSheet = "Commute"

// WriteCommuteCSV writes the commute dataset with its fixed header. Flagged
// is written as True or False.
func WriteCommuteCSV(w io.Writer, results []model.CommuteResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.CommuteHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(commuteRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func commuteRecord(r model.CommuteResult) []string {
	return []string{
		r.EmployeeNumber,
		formatFloat(r.Miles),
		formatFloat(r.Minutes),
		formatFloat(r.Work.Lat()),
		formatFloat(r.Work.Lon()),
		formatFloat(r.Home.Lat()),
		formatFloat(r.Home.Lon()),
		FormatBool(r.Flagged),
	}
}

// WriteCommuteJSON writes the commute dataset as a JSON array.
func WriteCommuteJSON(w io.Writer, results []model.CommuteResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []model.CommuteResult{}
	}
	return enc.Encode(results)
}

// WriteCommuteXLSX writes the commute dataset to a workbook with a single
// Commute sheet.
func WriteCommuteXLSX(path string, results []model.CommuteResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", CommuteSheet); err != nil {
		return err
	}
	header := make([]any, len(model.CommuteHeader))
	for i, h := range model.CommuteHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(CommuteSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range results {
		row := []any{r.EmployeeNumber, r.Miles, r.Minutes, r.Work.Lat(), r.Work.Lon(), r.Home.Lat(), r.Home.Lon(), r.Flagged}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(CommuteSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := styleHeader(f, CommuteSheet, len(header)); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// WriteCommute writes cfg.Output as CSV plus every configured extra format
// and returns the written paths.
func WriteCommute(cfg config.CommuteConfig, results []model.CommuteResult) ([]string, error) {
	if err := ensureDir(cfg.Output); err != nil {
		return nil, err
	}
	if err := writeFile(cfg.Output, func(w io.Writer) error { return WriteCommuteCSV(w, results) }); err != nil {
		return nil, err
	}
	paths := []string{cfg.Output}
	for _, format := range cfg.ExtraFormats {
		path := cfg.OutputFor(format)
		var err error
		switch strings.ToLower(format) {
		case config.FormatJSON:
			err = writeFile(path, func(w io.Writer) error { return WriteCommuteJSON(w, results) })
		case config.FormatXLSX:
			err = WriteCommuteXLSX(path, results)
		default:
			err = fmt.Errorf("unsupported format %q", format)
		}
		if err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FormatBool renders booleans the way the reporting workbook expects.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
