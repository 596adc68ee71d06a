package telework

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kilianp07/telework/core/model"
	"github.com/kilianp07/telework/pkg/sheet"
)

// ReadCommutes loads a commute dataset written by the commute pipeline,
// keyed by employee number.
func ReadCommutes(path string) (map[string]model.CommuteResult, error) {
	tbl, err := sheet.Read(path, "")
	if err != nil {
		return nil, fmt.Errorf("read commute dataset: %w", err)
	}
	if err := tbl.Require(model.CommuteHeader...); err != nil {
		return nil, fmt.Errorf("commute dataset %s: %w", path, err)
	}
	out := make(map[string]model.CommuteResult, len(tbl.Rows))
	for i, row := range tbl.Rows {
		num := row[model.CommuteHeader[0]]
		if num == "" {
			continue
		}
		var (
			r    = model.CommuteResult{EmployeeNumber: num}
			errs []string
		)
		parse := func(col string, dst *float64) {
			v := row[col]
			if v == "" {
				return
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, col)
				return
			}
			*dst = f
		}
		parse("Commute_Miles", &r.Miles)
		parse("Commute_Minutes", &r.Minutes)
		parse("Work_Latitude", &r.Work.Y)
		parse("Work_Longitude", &r.Work.X)
		parse("Home_Latitude", &r.Home.Y)
		parse("Home_Longitude", &r.Home.X)
		if len(errs) > 0 {
			return nil, fmt.Errorf("commute dataset %s row %d: invalid %s", path, tbl.Lines[i], strings.Join(errs, ", "))
		}
		flagged, err := parseBool(row["Flagged"])
		if err != nil {
			return nil, fmt.Errorf("commute dataset %s row %d: %w", path, tbl.Lines[i], err)
		}
		r.Flagged = flagged
		out[num] = r
	}
	return out, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "no", "n":
		return false, nil
	case "true", "1", "yes", "y":
		return true, nil
	}
	return false, fmt.Errorf("invalid Flagged value %q", v)
}
