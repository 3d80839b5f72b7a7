// Package distance computes the great-circle and routed distance tables for
// each reference location's candidates.
package distance

import (
	"errors"
	"fmt"

	internalmodels "eatery/internal/models"
	"eatery/models"
	"eatery/pkg/geo"
)

var ErrUnknownLocation = errors.New("unknown reference location")

// GreatCircleOne measures from the reference coordinate of loc to every
// candidate, in candidate order. unit must be one geo.ParseUnit accepts.
func GreatCircleOne(loc models.Location, table internalmodels.CandidateTable, unit geo.Unit) (internalmodels.GreatCircleTable, error) {
	if _, err := geo.ParseUnit(string(unit)); err != nil {
		return internalmodels.GreatCircleTable{}, err
	}
	out := internalmodels.GreatCircleTable{
		Location: loc,
		Unit:     string(unit),
		Rows:     make([]internalmodels.GreatCircleRow, len(table.Candidates)),
	}
	for i, c := range table.Candidates {
		out.Rows[i] = internalmodels.GreatCircleRow{
			CandidateID: c.ID,
			Distance:    internalmodels.Some(geo.Distance(loc.Coordinates, c.Coordinates, unit)),
		}
	}
	return out, nil
}

// GreatCircle computes a table per location. Reference coordinates come from
// locations, looked up by name, never from the candidate table.
func GreatCircle(tables *internalmodels.ByLocation[internalmodels.CandidateTable], locations []models.Location, unit geo.Unit) (*internalmodels.ByLocation[internalmodels.GreatCircleTable], error) {
	if _, err := geo.ParseUnit(string(unit)); err != nil {
		return nil, err
	}
	byName := indexLocations(locations)
	out := internalmodels.NewByLocation[internalmodels.GreatCircleTable](tables.Len())
	err := tables.Each(func(name string, table internalmodels.CandidateTable) error {
		loc, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLocation, name)
		}
		g, err := GreatCircleOne(loc, table, unit)
		if err != nil {
			return err
		}
		out.Set(name, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func indexLocations(locations []models.Location) map[string]models.Location {
	m := make(map[string]models.Location, len(locations))
	for _, l := range locations {
		m[l.Name] = l
	}
	return m
}
