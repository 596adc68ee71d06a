package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/telework/core/model"
)

// WriteDashboard renders a static HTML preview of the report: daily
// telework counts and miles avoided per employee.
func WriteDashboard(w io.Writer, r *model.Report) error {
	page := components.NewPage()
	page.PageTitle = r.Summary.Title
	page.AddCharts(dailyChart(r), employeeChart(r))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

func dailyChart(r *model.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    r.Summary.Title,
			Subtitle: fmt.Sprintf("Week of %s", r.Summary.WeekStart.Format(time.DateOnly)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Employees"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	var (
		days        []string
		reported    []opts.BarData
		teleworking []opts.BarData
	)
	for _, d := range r.Daily {
		days = append(days, d.Date.Format("Mon 01/02"))
		reported = append(reported, opts.BarData{Value: d.Reported})
		teleworking = append(teleworking, opts.BarData{Value: d.Teleworking})
	}
	bar.SetXAxis(days).
		AddSeries("Reported", reported).
		AddSeries("Teleworking", teleworking)
	return bar
}

func employeeChart(r *model.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Miles Avoided",
			Subtitle: fmt.Sprintf("%.1f miles, %.0f minutes in total", r.Summary.MilesAvoided, r.Summary.MinutesAvoided),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Employee"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Miles"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	var (
		employees []string
		miles     []opts.BarData
	)
	for _, e := range r.Employees {
		label := e.EmployeeNumber
		if e.EmployeeName != "" {
			label = e.EmployeeName
		}
		if e.Estimated {
			label += "*"
		}
		employees = append(employees, label)
		miles = append(miles, opts.BarData{Value: math.Round(e.MilesAvoided*10) / 10})
	}
	bar.SetXAxis(employees).AddSeries("Miles avoided", miles)
	return bar
}
