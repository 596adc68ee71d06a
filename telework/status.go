// Package telework builds the weekly telework status report from the
// status workbook and the commute dataset.
package telework

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/core/model"
	"github.com/kilianp07/telework/infra/logger"
	"github.com/kilianp07/telework/pkg/sheet"
)

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"2-Jan-06",
	"Monday, January 2, 2006",
}

// ParseDate accepts the layouts produced by spreadsheet tools and Excel
// serial day numbers.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return model.Day(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %q: %w", v, err)
		}
		return model.Day(t), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

// ReadStatus loads the telework status workbook. Rows with no employee
// number or an unreadable date are skipped and logged.
func ReadStatus(cfg config.ReportConfig) ([]model.StatusEntry, error) {
	log := logger.New("telework-status")
	cfg.SetDefaults()

	tbl, err := sheet.Read(cfg.StatusPath, cfg.StatusSheet)
	if err != nil {
		return nil, fmt.Errorf("read status workbook: %w", err)
	}
	if err := tbl.Require(cfg.EmployeeNumberField, cfg.DateField, cfg.StatusField); err != nil {
		return nil, fmt.Errorf("status workbook %s: %w", cfg.StatusPath, err)
	}

	out := make([]model.StatusEntry, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		num := row[cfg.EmployeeNumberField]
		if num == "" {
			log.Debugf("row %d has no employee number, skipped", tbl.Lines[i])
			continue
		}
		date, err := ParseDate(row[cfg.DateField])
		if err != nil {
			log.Warnf("row %d: %v, skipped", tbl.Lines[i], err)
			continue
		}
		status := row[cfg.StatusField]
		e := model.StatusEntry{
			EmployeeNumber: num,
			EmployeeName:   row[cfg.EmployeeNameField],
			Date:           date,
			Status:         status,
			Telework:       cfg.IsTelework(status),
		}
		if e.Telework {
			e.Status = model.StatusTelework
		}
		out = append(out, e)
	}
	log.Infof("loaded %d status entries from %s", len(out), cfg.StatusPath)
	return out, nil
}
