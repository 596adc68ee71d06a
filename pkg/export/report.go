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
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/core/model"
)

// Report worksheets.
const (
	SummarySheet   = "Summary"
	EmployeesSheet = "Employees"
	DailySheet     = "Daily"
)

// Report file names inside the output directory.
const (
	ReportXLSXFile = "telework_report.xlsx"
	ReportCSVFile  = "telework_employees.csv"
	ReportJSONFile = "telework_report.json"
	DashboardFile  = "telework_dashboard.html"
)

// EmployeesHeader is the column order of the per-employee table.
var EmployeesHeader = []string{
	"Employee_Number", "Employee_Name", "Days_Reported", "Telework_Days",
	"Commute_Miles", "Commute_Minutes", "Miles_Avoided", "Minutes_Avoided",
	"Estimated", "Outlier",
}

var dailyHeader = []string{"Date", "Reported", "Teleworking", "Telework_Share", "Miles_Avoided"}

// WriteReportCSV writes the per-employee table.
func WriteReportCSV(w io.Writer, r *model.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EmployeesHeader); err != nil {
		return err
	}
	for _, e := range r.Employees {
		rec := []string{
			e.EmployeeNumber,
			e.EmployeeName,
			strconv.Itoa(e.DaysReported),
			strconv.Itoa(e.TeleworkDays),
			formatFloat(e.CommuteMiles),
			formatFloat(e.CommuteMinutes),
			formatFloat(e.MilesAvoided),
			formatFloat(e.MinutesAvoided),
			FormatBool(e.Estimated),
			FormatBool(e.Outlier),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportJSON writes the whole report.
func WriteReportJSON(w io.Writer, r *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteReportXLSX writes the report workbook with its Summary, Employees
// and Daily sheets.
func WriteReportXLSX(path string, r *model.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	s := r.Summary
	summary := [][]any{
		{"Title", s.Title},
		{"Week Start", s.WeekStart.Format(time.DateOnly)},
		{"Last Day", s.LastDay.Format(time.DateOnly)},
		{"Employees", s.Employees},
		{"Telework Days", s.TeleworkDays},
		{"Miles Avoided", s.MilesAvoided},
		{"Minutes Avoided", s.MinutesAvoided},
		{"Commute Outliers", s.Outliers},
		{"Estimated Commutes", s.Estimated},
		{"Mean Commute Miles", s.MeanCommuteMiles},
		{"Median Commute Miles", s.MedianCommuteMiles},
		{"P90 Commute Miles", s.P90CommuteMiles},
		{"Average Commute Miles", s.AverageCommuteMiles},
		{"Average Commute Minutes", s.AverageCommuteMinutes},
		{"Commute Outlier Limit", s.OutlierLimitMiles},
	}
	if err := setRows(f, SummarySheet, append([][]any{{"Parameter", "Value"}}, summary...)); err != nil {
		return err
	}

	if _, err := f.NewSheet(EmployeesSheet); err != nil {
		return err
	}
	rows := [][]any{toAny(EmployeesHeader)}
	for _, e := range r.Employees {
		rows = append(rows, []any{
			e.EmployeeNumber, e.EmployeeName, e.DaysReported, e.TeleworkDays,
			e.CommuteMiles, e.CommuteMinutes, e.MilesAvoided, e.MinutesAvoided,
			e.Estimated, e.Outlier,
		})
	}
	if err := setRows(f, EmployeesSheet, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(DailySheet); err != nil {
		return err
	}
	rows = [][]any{toAny(dailyHeader)}
	for _, d := range r.Daily {
		rows = append(rows, []any{d.Date.Format(time.DateOnly), d.Reported, d.Teleworking, d.TeleworkShare, d.MilesAvoided})
	}
	if err := setRows(f, DailySheet, rows); err != nil {
		return err
	}

	for _, sheet := range []struct {
		name    string
		columns int
	}{{SummarySheet, 2}, {EmployeesSheet, len(EmployeesHeader)}, {DailySheet, len(dailyHeader)}} {
		if err := styleHeader(f, sheet.name, sheet.columns); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

// WriteReport writes every configured format into cfg.OutputDir and
// returns the written paths.
func WriteReport(cfg config.ReportConfig, r *model.Report) ([]string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", cfg.OutputDir, err)
	}
	var paths []string
	for _, format := range cfg.Formats {
		var (
			path string
			err  error
		)
		switch strings.ToLower(format) {
		case config.FormatXLSX:
			path = filepath.Join(cfg.OutputDir, ReportXLSXFile)
			err = WriteReportXLSX(path, r)
		case config.FormatCSV:
			path = filepath.Join(cfg.OutputDir, ReportCSVFile)
			err = writeFile(path, func(w io.Writer) error { return WriteReportCSV(w, r) })
		case config.FormatJSON:
			path = filepath.Join(cfg.OutputDir, ReportJSONFile)
			err = writeFile(path, func(w io.Writer) error { return WriteReportJSON(w, r) })
		case config.FormatHTML:
			path = filepath.Join(cfg.OutputDir, DashboardFile)
			err = writeFile(path, func(w io.Writer) error { return WriteDashboard(w, r) })
		default:
			err = fmt.Errorf("unsupported format %q", format)
		}
		if err != nil {
			return paths, fmt.Errorf("write %s report: %w", format, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
