package model

import "time"

// Normalised status values. Any status configured as telework becomes
// StatusTelework.
const (
	StatusTelework = "Telework"
	StatusOnSite   = "On-site"
)

// StatusEntry is one row of the weekly telework status workbook.
type StatusEntry struct {
	EmployeeNumber string    `json:"employee_number"`
	EmployeeName   string    `json:"employee_name"`
	Date           time.Time `json:"date"`
	Status         string    `json:"status"`
	Telework       bool      `json:"telework"`
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
