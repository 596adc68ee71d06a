package commute

import (
	"sort"

	"github.com/kilianp07/telework/arcgis"
	"github.com/kilianp07/telework/core/model"
)

// Results turns route features into commute rows and appends a zeroed row
// for every flagged employee. Rows are sorted by employee number.
func Results(routes []arcgis.Feature, flagged []string) []model.CommuteResult {
	out := make([]model.CommuteResult, 0, len(routes)+len(flagged))
	for _, r := range routes {
		from := model.Point{X: r.Float("From_Lon"), Y: r.Float("From_Lat")}
		to := model.Point{X: r.Float("To_Lon"), Y: r.Float("To_Lat")}
		res := model.CommuteResult{
			EmployeeNumber: r.String("RouteName"),
			Miles:          r.Float("Total_Miles"),
			Minutes:        r.Float("Total_Minutes"),
			Work:           from,
			Home:           to,
		}
		if r.String("From_"+FieldAddressType) != string(model.AddressWork) {
			res.Work, res.Home = to, from
		}
		out = append(out, res)
	}
	for _, n := range flagged {
		out = append(out, model.CommuteResult{EmployeeNumber: n, Flagged: true})
	}
	sort.SliceStable(out, func(i, j int) bool { return model.LessEmployeeNumber(out[i].EmployeeNumber, out[j].EmployeeNumber) })
	return out
}
