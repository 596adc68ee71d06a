// Package sheet reads tabular input files. CSV and Excel workbooks are
// both turned into header-keyed rows.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// Row maps trimmed header names to trimmed cell values.
type Row map[string]string

// Table is a parsed input file.
type Table struct {
	Headers []string
	Rows    []Row
	// Lines holds the 1-based record number of each row, header included.
	Lines []int
}

// Read parses a .csv file or an Excel workbook. For workbooks, sheet
// selects the worksheet and defaults to the first one.
func Read(path, sheet string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return ReadCSV(f)
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readWorkbook(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// ReadCSV parses CSV data from r. A UTF-8 byte order mark is ignored.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return fromRows(rows)
}

func readWorkbook(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.New("file has no header row")
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	t := &Table{Headers: headers}
	for i, rec := range rows[1:] {
		if blank(rec) {
			continue
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(rec) {
				row[h] = strings.TrimSpace(rec[j])
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, i+2)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Require returns ErrMissingColumn naming every absent column.
func (t *Table) Require(columns ...string) error {
	have := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		have[h] = true
	}
	var missing []string
	for _, c := range columns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}
