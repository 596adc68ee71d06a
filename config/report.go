package config

import (
	"errors"
	"fmt"
	"strings"
)

// ReportConfig carries the telework report parameters: the status workbook,
// the commute dataset and the averages applied when an employee's commute is
// unknown or exceeds the commute outlier limit.
type ReportConfig struct {
	StatusPath  string `json:"status_path"`
	StatusSheet string `json:"status_sheet"`
	CommutePath string `json:"commute_path"`
	OutputDir   string `json:"output_dir"`
	Title       string `json:"title"`

	AverageCommuteMiles   float64 `json:"average_commute_miles"`
	AverageCommuteMinutes float64 `json:"average_commute_minutes"`
	// OutlierLimitMiles of 0 means the default of 100 miles.
	OutlierLimitMiles float64 `json:"outlier_limit_miles"`

	EmployeeNumberField string   `json:"employee_number_field"`
	EmployeeNameField   string   `json:"employee_name_field"`
	DateField           string   `json:"date_field"`
	StatusField         string   `json:"status_field"`
	TeleworkValues      []string `json:"telework_values"`
	Formats             []string `json:"formats"`
}

func (c *ReportConfig) SetDefaults() {
	if c.CommutePath == "" {
		c.CommutePath = "commute.csv"
	}
	if c.OutputDir == "" {
		c.OutputDir = "report"
	}
	if c.Title == "" {
		c.Title = "Telework Status"
	}
	if c.OutlierLimitMiles == 0 {
		c.OutlierLimitMiles = 100
	}
	if c.EmployeeNumberField == "" {
		c.EmployeeNumberField = "Employee_Number"
	}
	if c.EmployeeNameField == "" {
		c.EmployeeNameField = "Employee_Name"
	}
	if c.DateField == "" {
		c.DateField = "Date"
	}
	if c.StatusField == "" {
		c.StatusField = "Status"
	}
	if len(c.TeleworkValues) == 0 {
		c.TeleworkValues = []string{"telework", "remote", "tw"}
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{FormatXLSX, FormatCSV, FormatJSON, FormatHTML}
	}
}

func (c ReportConfig) Validate() error {
	var errs []error
	if c.StatusPath == "" {
		errs = append(errs, errors.New("status_path is required"))
	}
	if c.AverageCommuteMiles < 0 || c.AverageCommuteMinutes < 0 {
		errs = append(errs, errors.New("average commute values must not be negative"))
	}
	if c.OutlierLimitMiles <= 0 {
		errs = append(errs, errors.New("outlier_limit_miles must be positive"))
	}
	for _, f := range c.Formats {
		switch strings.ToLower(f) {
		case FormatCSV, FormatJSON, FormatXLSX, FormatHTML:
		default:
			errs = append(errs, fmt.Errorf("unsupported format %q", f))
		}
	}
	return errors.Join(errs...)
}

// IsTelework reports whether a status cell value means the employee
// teleworked that day.
func (c ReportConfig) IsTelework(status string) bool {
	s := strings.TrimSpace(status)
	for _, v := range c.TeleworkValues {
		if strings.EqualFold(s, strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}
