package model

// CommuteResult is one row of the commute dataset consumed by the telework
// report. Flagged rows carry zero values: their work/home locations could not
// be paired or geocoded.
type CommuteResult struct {
	EmployeeNumber string  `json:"employee_number"`
	Miles          float64 `json:"commute_miles"`
	Minutes        float64 `json:"commute_minutes"`
	Work           Point   `json:"work"`
	Home           Point   `json:"home"`
	Flagged        bool    `json:"flagged"`
}

// CommuteHeader is the column order of the commute dataset.
var CommuteHeader = []string{
	"Employee_Number",
	"Commute_Miles",
	"Commute_Minutes",
	"Work_Latitude",
	"Work_Longitude",
	"Home_Latitude",
	"Home_Longitude",
	"Flagged",
}
