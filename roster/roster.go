// Package roster loads the employee roster and turns it into geocoding
// batches.
package roster

import (
	"fmt"

	"github.com/kilianp07/telework/arcgis"
	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/core/model"
	"github.com/kilianp07/telework/infra/logger"
	"github.com/kilianp07/telework/pkg/sheet"
)

// ErrMissingColumn is returned when a mapped column is absent from the
// roster header.
var ErrMissingColumn = sheet.ErrMissingColumn

// Read loads the roster described by cfg. Rows without an employee number
// are skipped and duplicate numbers keep their first row.
func Read(cfg config.RosterConfig) ([]model.Employee, error) {
	log := logger.New("roster")
	cfg.SetDefaults()

	tbl, err := sheet.Read(cfg.Path, cfg.Sheet)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	if err := tbl.Require(cfg.Fields()...); err != nil {
		return nil, fmt.Errorf("roster %s: %w", cfg.Path, err)
	}

	seen := make(map[string]int, len(tbl.Rows))
	out := make([]model.Employee, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		line := tbl.Lines[i]
		num := row[cfg.EmployeeNumberField]
		if num == "" {
			log.Warnf("row %d has no employee number, skipped", line)
			continue
		}
		if first, ok := seen[num]; ok {
			log.Warnf("employee %s on row %d already listed on row %d, skipped", num, line, first)
			continue
		}
		seen[num] = line
		e := model.Employee{
			Number: num,
			Work: model.Address{
				Street: row[cfg.WorkAddressField],
				City:   row[cfg.WorkCityField],
				Region: row[cfg.WorkStateField],
				Postal: row[cfg.WorkZipField],
			},
			Home: model.Address{
				Street: row[cfg.HomeAddressField],
				City:   row[cfg.HomeCityField],
				Region: row[cfg.HomeStateField],
				Postal: row[cfg.HomeZipField],
			},
		}
		out = append(out, e)
	}
	log.Infof("loaded %d employees from %s", len(out), cfg.Path)
	return out, nil
}

// Ref identifies the roster address behind a geocoding record.
type Ref struct {
	Employee string
	Type     model.AddressType
}

// Index maps record object IDs back to their roster address.
type Index map[int]Ref

// Records builds a work and a home record per employee, numbering object
// IDs from startID. Blank addresses are left out and will be flagged
// during pairing.
func Records(employees []model.Employee, startID int) ([]arcgis.AddressRecord, Index) {
	records := make([]arcgis.AddressRecord, 0, len(employees)*2)
	index := make(Index, len(employees)*2)
	id := startID
	for _, e := range employees {
		for _, t := range []model.AddressType{model.AddressWork, model.AddressHome} {
			a := e.Address(t)
			if a.IsZero() {
				continue
			}
			records = append(records, arcgis.AddressRecord{
				ObjectID: id,
				Address:  a.Street,
				City:     a.City,
				Region:   a.Region,
				Postal:   a.Postal,
			})
			index[id] = Ref{Employee: e.Number, Type: t}
			id++
		}
	}
	return records, index
}

// Resolve attaches the employee and address type to geocoded locations.
// Locations whose object ID is unknown are dropped.
func (idx Index) Resolve(locations []model.Location) []model.Location {
	out := make([]model.Location, 0, len(locations))
	for _, l := range locations {
		ref, ok := idx[l.ObjectID]
		if !ok {
			continue
		}
		l.Employee = ref.Employee
		l.Type = ref.Type
		out = append(out, l)
	}
	return out
}
