package distance

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	internalmodels "eatery/internal/models"
	"eatery/models"
	"eatery/pkg/routing"
)

const defaultDurationUnit = "mins"

// MatrixAPI is the authenticated routing provider.
type MatrixAPI interface {
	DistanceMatrix(ctx context.Context, req routing.Request) (*routing.MatrixResponse, error)
}

// UnitMismatchError means elements of one response were written in
// different units, so their magnitudes cannot share a column.
type UnitMismatchError struct {
	Location string
	Field    string
	Units    []string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("location %q: %s units disagree within one response: %s", e.Location, e.Field, strings.Join(e.Units, ", "))
}

// ShapeError means the provider answered with a different number of
// elements than destinations were sent.
type ShapeError struct {
	Location string
	Want     int
	Got      int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("location %q: sent %d destinations, got %d elements", e.Location, e.Want, e.Got)
}

type Router struct {
	api   MatrixAPI
	units routing.Units
}

func NewRouter(api MatrixAPI, units routing.Units) *Router {
	if units == "" {
		units = routing.Metric
	}
	return &Router{api: api, units: units}
}

// ComputeOne issues a single matrix request from loc to every candidate.
// No-route elements become missing values; a zero-row table makes no call.
func (r *Router) ComputeOne(ctx context.Context, loc models.Location, table internalmodels.CandidateTable, mode routing.Mode) (internalmodels.RoutedTable, error) {
	out := internalmodels.RoutedTable{
		Location:     loc,
		Mode:         string(mode),
		DistanceUnit: r.units.DistanceLabel(),
		DurationUnit: defaultDurationUnit,
		Rows:         make([]internalmodels.RoutedRow, 0, table.Len()),
	}
	if table.Len() == 0 {
		return out, nil
	}

	resp, err := r.api.DistanceMatrix(ctx, routing.Request{
		Origins:      []models.Coordinates{loc.Coordinates},
		Destinations: table.Destinations(),
		Mode:         mode,
		Units:        r.units,
	})
	if err != nil {
		return internalmodels.RoutedTable{}, fmt.Errorf("distance matrix %q: %w", loc.Name, err)
	}
	if len(resp.Rows) != 1 {
		return internalmodels.RoutedTable{}, &ShapeError{Location: loc.Name, Want: 1, Got: len(resp.Rows)}
	}
	elements := resp.Rows[0].Elements
	if len(elements) != table.Len() {
		return internalmodels.RoutedTable{}, &ShapeError{Location: loc.Name, Want: table.Len(), Got: len(elements)}
	}

	distUnits := map[string]struct{}{}
	durations := make(map[int]routing.Magnitude, len(elements))
	for i, el := range elements {
		row := internalmodels.RoutedRow{
			CandidateID: table.Candidates[i].ID,
			Distance:    internalmodels.Missing(),
			Duration:    internalmodels.Missing(),
			Status:      el.Status,
		}
		switch {
		case el.Status == routing.StatusOK:
			dist, err := routing.ParseMagnitude(el.Distance.Text)
			if err != nil {
				return internalmodels.RoutedTable{}, fmt.Errorf("location %q element %d distance: %w", loc.Name, i, err)
			}
			dur, err := routing.ParseMagnitude(el.Duration.Text)
			if err != nil {
				return internalmodels.RoutedTable{}, fmt.Errorf("location %q element %d duration: %w", loc.Name, i, err)
			}
			row.Distance = internalmodels.Some(dist.Value)
			distUnits[dist.Unit] = struct{}{}
			durations[i] = dur
		case routing.NoRoute(el.Status):
			if el.Status != routing.StatusZeroResults {
				log.Printf("No route to %q from %q: %s", table.Candidates[i].Name, loc.Name, el.Status)
			}
		default:
			return internalmodels.RoutedTable{}, fmt.Errorf("location %q element %d: %w", loc.Name, i, &routing.StatusError{Status: el.Status})
		}
		out.Rows = append(out.Rows, row)
	}

	if out.DistanceUnit, err = uniqueUnit(loc.Name, "distance", distUnits, out.DistanceUnit); err != nil {
		return internalmodels.RoutedTable{}, err
	}
	if out.DurationUnit, err = foldDurations(loc.Name, out.Rows, durations, out.DurationUnit); err != nil {
		return internalmodels.RoutedTable{}, err
	}
	return out, nil
}

// foldDurations writes every parsed duration into rows, rescaled to the
// finest time unit seen ("1 hour" next to "45 mins" becomes 60 mins).
// Labels that are not time units must agree exactly.
func foldDurations(location string, rows []internalmodels.RoutedRow, durations map[int]routing.Magnitude, fallback string) (string, error) {
	seen := map[string]struct{}{}
	labels := make([]string, 0, len(durations))
	for _, d := range durations {
		if _, dup := seen[d.Unit]; !dup {
			labels = append(labels, d.Unit)
		}
		seen[d.Unit] = struct{}{}
	}

	unit, ok := routing.SmallestDuration(labels)
	if !ok {
		u, err := uniqueUnit(location, "duration", seen, fallback)
		if err != nil {
			return "", err
		}
		for i, d := range durations {
			rows[i].Duration = internalmodels.Some(d.Value)
		}
		return u, nil
	}
	for i, d := range durations {
		folded, err := routing.ConvertDuration(d, unit)
		if err != nil {
			return "", err
		}
		rows[i].Duration = internalmodels.Some(folded.Value)
	}
	return unit, nil
}

// Compute runs ComputeOne for every location, in order.
func (r *Router) Compute(ctx context.Context, tables *internalmodels.ByLocation[internalmodels.CandidateTable], locations []models.Location, mode routing.Mode) (*internalmodels.ByLocation[internalmodels.RoutedTable], error) {
	byName := indexLocations(locations)
	out := internalmodels.NewByLocation[internalmodels.RoutedTable](tables.Len())
	err := tables.Each(func(name string, table internalmodels.CandidateTable) error {
		loc, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLocation, name)
		}
		routed, err := r.ComputeOne(ctx, loc, table, mode)
		if err != nil {
			return err
		}
		out.Set(name, routed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func uniqueUnit(location, field string, seen map[string]struct{}, fallback string) (string, error) {
	switch len(seen) {
	case 0:
		return fallback, nil
	case 1:
		for u := range seen {
			return u, nil
		}
	}
	units := make([]string, 0, len(seen))
	for u := range seen {
		units = append(units, u)
	}
	sort.Strings(units)
	return "", &UnitMismatchError{Location: location, Field: field, Units: units}
}
