package commute

import (
	"strings"

	"github.com/kilianp07/telework/core/model"
	"github.com/kilianp07/telework/roster"
)

// Flag reasons.
const (
	ReasonMissingWork = "work address not geocoded"
	ReasonMissingHome = "home address not geocoded"
	ReasonSameAddress = "home and work addresses are the same"
	ReasonZeroScore   = "address matched with a zero score"
	ReasonGeocodeFail = "geocode batch failed"
)

// Pairing splits employees into routable work/home pairs and flagged
// employees. Origins[i] and Destinations[i] belong to the same employee.
type Pairing struct {
	Origins      []model.Location
	Destinations []model.Location
	Flagged      []string
	Reasons      map[string]string
}

// Pair matches each employee's work and home locations. Work is the
// origin and home the destination.
func Pair(employees []model.Employee, locations []model.Location, index roster.Index) Pairing {
	byEmployee := make(map[string]map[model.AddressType]model.Location, len(employees))
	for _, l := range index.Resolve(locations) {
		m := byEmployee[l.Employee]
		if m == nil {
			m = make(map[model.AddressType]model.Location, 2)
			byEmployee[l.Employee] = m
		}
		m[l.Type] = l
	}

	p := Pairing{Reasons: map[string]string{}}
	for _, e := range employees {
		locs := byEmployee[e.Number]
		work, hasWork := locs[model.AddressWork]
		home, hasHome := locs[model.AddressHome]

		reason := ""
		switch {
		case !hasWork:
			reason = ReasonMissingWork
		case !hasHome:
			reason = ReasonMissingHome
		case !work.Matched() || !home.Matched():
			reason = ReasonZeroScore
		case sameAddress(work, home):
			reason = ReasonSameAddress
		}
		if reason != "" {
			p.Flagged = append(p.Flagged, e.Number)
			p.Reasons[e.Number] = reason
			continue
		}
		p.Origins = append(p.Origins, work)
		p.Destinations = append(p.Destinations, home)
	}
	return p
}

func sameAddress(a, b model.Location) bool {
	if strings.EqualFold(strings.TrimSpace(a.MatchAddress), strings.TrimSpace(b.MatchAddress)) {
		return true
	}
	return a.Point == b.Point
}

// MarkGeocodeFailed rewrites the reason of employees flagged for a missing
// address when that address was in a failed geocode batch.
func (p *Pairing) MarkGeocodeFailed(index roster.Index, objectIDs []int) {
	for _, id := range objectIDs {
		ref, ok := index[id]
		if !ok {
			continue
		}
		reason := p.Reasons[ref.Employee]
		if (ref.Type == model.AddressWork && reason == ReasonMissingWork) ||
			(ref.Type == model.AddressHome && reason == ReasonMissingHome) {
			p.Reasons[ref.Employee] = ReasonGeocodeFail
		}
	}
}
