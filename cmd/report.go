package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/telework/app"
)

var reportFlags struct {
	status       string
	commute      string
	outDir       string
	avgMiles     float64
	avgMinutes   float64
	outlierLimit float64
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the telework status report",
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.status, "status", "", "telework status workbook")
	f.StringVar(&reportFlags.commute, "commute", "", "commute dataset CSV")
	f.StringVar(&reportFlags.outDir, "out-dir", "", "report output directory")
	f.Float64Var(&reportFlags.avgMiles, "avg-miles", 0, "average one-way commute miles")
	f.Float64Var(&reportFlags.avgMinutes, "avg-minutes", 0, "average one-way commute minutes")
	f.Float64Var(&reportFlags.outlierLimit, "outlier-limit", 0, "commute outlier limit in miles")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	if f.Changed("status") {
		cfg.Report.StatusPath = reportFlags.status
	}
	if f.Changed("commute") {
		cfg.Report.CommutePath = reportFlags.commute
	}
	if f.Changed("out-dir") {
		cfg.Report.OutputDir = reportFlags.outDir
	}
	if f.Changed("avg-miles") {
		cfg.Report.AverageCommuteMiles = reportFlags.avgMiles
	}
	if f.Changed("avg-minutes") {
		cfg.Report.AverageCommuteMinutes = reportFlags.avgMinutes
	}
	if f.Changed("outlier-limit") {
		cfg.Report.OutlierLimitMiles = reportFlags.outlierLimit
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		res, err := svc.Report(ctx)
		if err != nil {
			return err
		}
		s := res.Report.Summary
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "week of %s: %d employees, %d telework days, %.1f miles and %.0f minutes avoided\n",
			s.WeekStart.Format(time.DateOnly), s.Employees, s.TeleworkDays, s.MilesAvoided, s.MinutesAvoided)
		if s.Estimated > 0 {
			fmt.Fprintf(w, "%d employees used the average commute (%d above the outlier limit)\n", s.Estimated, s.Outliers)
		}
		for _, p := range res.Outputs {
			fmt.Fprintf(w, "wrote %s\n", p)
		}
		return nil
	})
}
