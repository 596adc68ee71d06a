package telework

import (
	"errors"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/core/model"
	"github.com/kilianp07/telework/infra/logger"
)

// ErrNoRows is returned when the status workbook holds no usable row.
var ErrNoRows = errors.New("no status rows")

type employeeDay struct {
	employee string
	day      time.Time
}

// BuildReport computes the telework report. Each telework day avoids a
// round trip, twice the employee's one-way commute. The average commute
// replaces commutes that are unknown, flagged or above the outlier limit.
func BuildReport(entries []model.StatusEntry, commutes map[string]model.CommuteResult, cfg config.ReportConfig) (*model.Report, error) {
	log := logger.New("telework-report")
	cfg.SetDefaults()
	if len(entries) == 0 {
		return nil, ErrNoRows
	}

	// Keep the last status reported for an employee on a given day.
	latest := make(map[employeeDay]model.StatusEntry, len(entries))
	order := make([]employeeDay, 0, len(entries))
	for _, e := range entries {
		k := employeeDay{employee: e.EmployeeNumber, day: model.Day(e.Date)}
		if _, ok := latest[k]; ok {
			log.Warnf("employee %s has several statuses on %s, keeping the last", e.EmployeeNumber, k.day.Format(time.DateOnly))
		} else {
			order = append(order, k)
		}
		latest[k] = e
	}

	employees := map[string]*model.EmployeeReport{}
	daily := map[time.Time]*model.DailyReport{}
	first, last := order[0].day, order[0].day
	for _, k := range order {
		e := latest[k]
		er := employees[k.employee]
		if er == nil {
			er = newEmployeeReport(k.employee, commutes, cfg)
			employees[k.employee] = er
		}
		if e.EmployeeName != "" {
			er.EmployeeName = e.EmployeeName
		}
		er.DaysReported++

		d := daily[k.day]
		if d == nil {
			d = &model.DailyReport{Date: k.day}
			daily[k.day] = d
		}
		d.Reported++
		if e.Telework {
			er.TeleworkDays++
			d.Teleworking++
			d.MilesAvoided += 2 * er.CommuteMiles
		}
		if k.day.Before(first) {
			first = k.day
		}
		if k.day.After(last) {
			last = k.day
		}
	}

	r := &model.Report{
		Summary: model.ReportSummary{
			Title:                 cfg.Title,
			WeekStart:             model.WeekStart(first),
			LastDay:               last,
			Employees:             len(employees),
			AverageCommuteMiles:   cfg.AverageCommuteMiles,
			AverageCommuteMinutes: cfg.AverageCommuteMinutes,
			OutlierLimitMiles:     cfg.OutlierLimitMiles,
		},
	}

	var measured []float64
	for _, er := range employees {
		er.MilesAvoided = float64(er.TeleworkDays) * 2 * er.CommuteMiles
		er.MinutesAvoided = float64(er.TeleworkDays) * 2 * er.CommuteMinutes
		r.Summary.TeleworkDays += er.TeleworkDays
		r.Summary.MilesAvoided += er.MilesAvoided
		r.Summary.MinutesAvoided += er.MinutesAvoided
		if er.Outlier {
			r.Summary.Outliers++
		}
		if er.Estimated {
			r.Summary.Estimated++
		} else {
			measured = append(measured, er.CommuteMiles)
		}
		r.Employees = append(r.Employees, *er)
	}
	sort.Slice(r.Employees, func(i, j int) bool {
		return model.LessEmployeeNumber(r.Employees[i].EmployeeNumber, r.Employees[j].EmployeeNumber)
	})

	for _, d := range daily {
		if d.Reported > 0 {
			d.TeleworkShare = float64(d.Teleworking) / float64(d.Reported)
		}
		r.Daily = append(r.Daily, *d)
	}
	sort.Slice(r.Daily, func(i, j int) bool { return r.Daily[i].Date.Before(r.Daily[j].Date) })

	if len(measured) > 0 {
		sort.Float64s(measured)
		r.Summary.MeanCommuteMiles = stat.Mean(measured, nil)
		r.Summary.MedianCommuteMiles = stat.Quantile(0.5, stat.Empirical, measured, nil)
		r.Summary.P90CommuteMiles = stat.Quantile(0.9, stat.Empirical, measured, nil)
	}
	log.Infof("report for week of %s: %d employees, %d telework days, %.1f miles avoided",
		r.Summary.WeekStart.Format(time.DateOnly), r.Summary.Employees, r.Summary.TeleworkDays, r.Summary.MilesAvoided)
	return r, nil
}

func newEmployeeReport(number string, commutes map[string]model.CommuteResult, cfg config.ReportConfig) *model.EmployeeReport {
	er := &model.EmployeeReport{EmployeeNumber: number}
	c, ok := commutes[number]
	switch {
	case !ok || c.Flagged:
		er.Estimated = true
	case c.Miles > cfg.OutlierLimitMiles:
		er.Estimated = true
		er.Outlier = true
	default:
		er.CommuteMiles = c.Miles
		er.CommuteMinutes = c.Minutes
		return er
	}
	er.CommuteMiles = cfg.AverageCommuteMiles
	er.CommuteMinutes = cfg.AverageCommuteMinutes
	return er
}
