package config

import (
	"errors"
	"fmt"
	"strings"
)

// RosterConfig locates the employee roster and maps its columns. Field names
// match the header row of the CSV or worksheet.
type RosterConfig struct {
	Path  string `json:"path"`
	Sheet string `json:"sheet"`

	EmployeeNumberField string `json:"employee_number_field"`
	WorkAddressField    string `json:"work_address_field"`
	WorkCityField       string `json:"work_city_field"`
	WorkStateField      string `json:"work_state_field"`
	WorkZipField        string `json:"work_zip_field"`
	HomeAddressField    string `json:"home_address_field"`
	HomeCityField       string `json:"home_city_field"`
	HomeStateField      string `json:"home_state_field"`
	HomeZipField        string `json:"home_zip_field"`
}

// SetDefaults uses the column names of the sample roster shipped with the
// template.
func (c *RosterConfig) SetDefaults() {
	defaults := []struct {
		field *string
		value string
	}{
		{&c.EmployeeNumberField, "Employee_Number"},
		{&c.WorkAddressField, "Work_Address"},
		{&c.WorkCityField, "Work_City"},
		{&c.WorkStateField, "Work_State"},
		{&c.WorkZipField, "Work_Zip"},
		{&c.HomeAddressField, "Home_Address"},
		{&c.HomeCityField, "Home_City"},
		{&c.HomeStateField, "Home_State"},
		{&c.HomeZipField, "Home_Zip"},
	}
	for _, d := range defaults {
		if strings.TrimSpace(*d.field) == "" {
			*d.field = d.value
		}
	}
}

// Validate requires a roster path.
func (c RosterConfig) Validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	seen := map[string]bool{}
	for _, f := range c.Fields() {
		if seen[f] {
			return fmt.Errorf("column %q mapped twice", f)
		}
		seen[f] = true
	}
	return nil
}

// Fields lists every mapped column.
func (c RosterConfig) Fields() []string {
	return []string{
		c.EmployeeNumberField,
		c.WorkAddressField, c.WorkCityField, c.WorkStateField, c.WorkZipField,
		c.HomeAddressField, c.HomeCityField, c.HomeStateField, c.HomeZipField,
	}
}
