package model

import "time"

// EmployeeReport is the weekly telework summary of one employee. Commute
// values are one-way.
type EmployeeReport struct {
	EmployeeNumber string  `json:"employee_number"`
	EmployeeName   string  `json:"employee_name"`
	DaysReported   int     `json:"days_reported"`
	TeleworkDays   int     `json:"telework_days"`
	CommuteMiles   float64 `json:"commute_miles"`
	CommuteMinutes float64 `json:"commute_minutes"`
	MilesAvoided   float64 `json:"miles_avoided"`
	MinutesAvoided float64 `json:"minutes_avoided"`
	// Estimated is set when the average commute replaced the employee's.
	Estimated bool `json:"estimated"`
	// Outlier is set when the measured commute exceeded the commute
	// outlier limit.
	Outlier bool `json:"outlier"`
}

// DailyReport counts statuses for one day.
type DailyReport struct {
	Date          time.Time `json:"date"`
	Reported      int       `json:"reported"`
	Teleworking   int       `json:"teleworking"`
	TeleworkShare float64   `json:"telework_share"`
	MilesAvoided  float64   `json:"miles_avoided"`
}

// ReportSummary holds the report totals and the parameters they were
// computed with.
type ReportSummary struct {
	Title          string    `json:"title"`
	WeekStart      time.Time `json:"week_start"`
	LastDay        time.Time `json:"last_day"`
	Employees      int       `json:"employees"`
	TeleworkDays   int       `json:"telework_days"`
	MilesAvoided   float64   `json:"miles_avoided"`
	MinutesAvoided float64   `json:"minutes_avoided"`
	Outliers       int       `json:"outliers"`
	Estimated      int       `json:"estimated"`

	MeanCommuteMiles   float64 `json:"mean_commute_miles"`
	MedianCommuteMiles float64 `json:"median_commute_miles"`
	P90CommuteMiles    float64 `json:"p90_commute_miles"`

	AverageCommuteMiles   float64 `json:"average_commute_miles"`
	AverageCommuteMinutes float64 `json:"average_commute_minutes"`
	OutlierLimitMiles     float64 `json:"outlier_limit_miles"`
}

// Report is the telework status report.
type Report struct {
	Summary   ReportSummary    `json:"summary"`
	Employees []EmployeeReport `json:"employees"`
	Daily     []DailyReport    `json:"daily"`
}
