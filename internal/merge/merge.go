// Package merge joins a location's candidate table with its two distance
// tables.
package merge

import (
	"fmt"

	internalmodels "eatery/internal/models"
)

// Absent marks a source that has no table at all for a location.
const Absent = -1

// RowCountMismatchError is fatal for the location it names: the three
// sources must describe the same candidates.
type RowCountMismatchError struct {
	Location    string
	Candidates  int
	GreatCircle int
	Routed      int
}

func (e *RowCountMismatchError) Error() string {
	return fmt.Sprintf("location %q: row count mismatch: candidates=%s great-circle=%s routed=%s",
		e.Location, count(e.Candidates), count(e.GreatCircle), count(e.Routed))
}

func count(n int) string {
	if n == Absent {
		return "absent"
	}
	return fmt.Sprint(n)
}

// JoinError means the counts agree but a candidate id is missing from, or
// repeated in, a distance table.
type JoinError struct {
	Location    string
	Source      string
	CandidateID string
	Reason      string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("location %q: %s table: candidate %s %s", e.Location, e.Source, e.CandidateID, e.Reason)
}

// Table merges one location's three sources. Rows follow candidate order and
// are joined on candidate id after the row counts have been checked.
func Table(c internalmodels.CandidateTable, g internalmodels.GreatCircleTable, r internalmodels.RoutedTable) (internalmodels.MergedTable, error) {
	name := c.Location.Name
	if c.Len() != g.Len() || c.Len() != r.Len() {
		return internalmodels.MergedTable{}, &RowCountMismatchError{
			Location:    name,
			Candidates:  c.Len(),
			GreatCircle: g.Len(),
			Routed:      r.Len(),
		}
	}

	gByID := make(map[string]internalmodels.GreatCircleRow, g.Len())
	for _, row := range g.Rows {
		if _, dup := gByID[row.CandidateID]; dup {
			return internalmodels.MergedTable{}, &JoinError{Location: name, Source: "great-circle", CandidateID: row.CandidateID, Reason: "appears twice"}
		}
		gByID[row.CandidateID] = row
	}
	rByID := make(map[string]internalmodels.RoutedRow, r.Len())
	for _, row := range r.Rows {
		if _, dup := rByID[row.CandidateID]; dup {
			return internalmodels.MergedTable{}, &JoinError{Location: name, Source: "routed", CandidateID: row.CandidateID, Reason: "appears twice"}
		}
		rByID[row.CandidateID] = row
	}

	out := internalmodels.MergedTable{
		Location:        c.Location,
		GreatCircleUnit: g.Unit,
		Mode:            r.Mode,
		DistanceUnit:    r.DistanceUnit,
		DurationUnit:    r.DurationUnit,
		Rows:            make([]internalmodels.MergedRow, 0, c.Len()),
	}
	for _, cand := range c.Candidates {
		gRow, ok := gByID[cand.ID]
		if !ok {
			return internalmodels.MergedTable{}, &JoinError{Location: name, Source: "great-circle", CandidateID: cand.ID, Reason: "is missing"}
		}
		rRow, ok := rByID[cand.ID]
		if !ok {
			return internalmodels.MergedTable{}, &JoinError{Location: name, Source: "routed", CandidateID: cand.ID, Reason: "is missing"}
		}
		out.Rows = append(out.Rows, internalmodels.MergedRow{
			Candidate:      cand,
			GreatCircle:    gRow.Distance,
			RoutedDistance: rRow.Distance,
			RoutedDuration: rRow.Duration,
			RouteStatus:    rRow.Status,
		})
	}
	return out, nil
}

// All merges every location present in candidates, in its order.
func All(
	candidates *internalmodels.ByLocation[internalmodels.CandidateTable],
	greatCircle *internalmodels.ByLocation[internalmodels.GreatCircleTable],
	routed *internalmodels.ByLocation[internalmodels.RoutedTable],
) (*internalmodels.ByLocation[internalmodels.MergedTable], error) {
	out := internalmodels.NewByLocation[internalmodels.MergedTable](candidates.Len())
	err := candidates.Each(func(name string, c internalmodels.CandidateTable) error {
		g, gok := greatCircle.Get(name)
		r, rok := routed.Get(name)
		if !gok || !rok {
			mismatch := &RowCountMismatchError{Location: name, Candidates: c.Len(), GreatCircle: g.Len(), Routed: r.Len()}
			if !gok {
				mismatch.GreatCircle = Absent
			}
			if !rok {
				mismatch.Routed = Absent
			}
			return mismatch
		}
		merged, err := Table(c, g, r)
		if err != nil {
			return err
		}
		out.Set(name, merged)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
