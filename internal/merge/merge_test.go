package merge

import (
	"errors"
	"testing"

	internalmodels "eatery/internal/models"
	"eatery/models"
)

var school = models.Location{Name: "Roosevelt High", Coordinates: models.Coordinates{Lat: 34.0, Lon: -118.0}}

func sources(ids ...string) (internalmodels.CandidateTable, internalmodels.GreatCircleTable, internalmodels.RoutedTable) {
	c := internalmodels.CandidateTable{Location: school}
	g := internalmodels.GreatCircleTable{Location: school, Unit: "km"}
	r := internalmodels.RoutedTable{Location: school, Mode: "driving", DistanceUnit: "km", DurationUnit: "mins"}
	for i, id := range ids {
		c.Candidates = append(c.Candidates, internalmodels.Candidate{ID: id, Name: "venue " + id, PriceLevel: internalmodels.Missing()})
		g.Rows = append(g.Rows, internalmodels.GreatCircleRow{CandidateID: id, Distance: internalmodels.Some(float64(i) + 0.5)})
		r.Rows = append(r.Rows, internalmodels.RoutedRow{CandidateID: id, Distance: internalmodels.Some(float64(i) + 1), Duration: internalmodels.Some(float64(i) + 2)})
	}
	return c, g, r
}

func TestTable_MatchingCounts(t *testing.T) {
	c, g, r := sources("a", "b", "c")

	merged, err := Table(c, g, r)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if merged.Len() != 3 {
		t.Fatalf("got %d rows, want 3", merged.Len())
	}
	if n := len(merged.Columns()); n != len(internalmodels.CandidateColumns)+3 {
		t.Fatalf("got %d columns, want candidate columns plus three distance columns", n)
	}
	row := merged.Rows[1]
	if row.ID != "b" || row.GreatCircle != 1.5 || row.RoutedDistance != 2 || row.RoutedDuration != 3 {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestTable_JoinsByIDNotPosition(t *testing.T) {
	c, g, r := sources("a", "b")
	// routed rows arrive in the opposite order
	r.Rows[0], r.Rows[1] = r.Rows[1], r.Rows[0]

	merged, err := Table(c, g, r)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if merged.Rows[0].ID != "a" || merged.Rows[0].RoutedDistance != 1 {
		t.Fatalf("row 0 joined the wrong routed entry: %+v", merged.Rows[0])
	}
}

func TestTable_RowCountMismatch(t *testing.T) {
	c, g, r := sources("a", "b")
	r.Rows = r.Rows[:1]

	_, err := Table(c, g, r)
	var mismatch *RowCountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("want RowCountMismatchError, got %v", err)
	}
	if mismatch.Location != school.Name || mismatch.Candidates != 2 || mismatch.Routed != 1 {
		t.Fatalf("unexpected mismatch: %+v", mismatch)
	}
}

func TestTable_JoinErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *internalmodels.GreatCircleTable, r *internalmodels.RoutedTable)
	}{
		{"unknown id in great-circle", func(g *internalmodels.GreatCircleTable, _ *internalmodels.RoutedTable) { g.Rows[1].CandidateID = "zzz" }},
		{"duplicate id in routed", func(_ *internalmodels.GreatCircleTable, r *internalmodels.RoutedTable) { r.Rows[1].CandidateID = "a" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, g, r := sources("a", "b")
			tt.mutate(&g, &r)
			_, err := Table(c, g, r)
			var joinErr *JoinError
			if !errors.As(err, &joinErr) {
				t.Fatalf("want JoinError, got %v", err)
			}
		})
	}
}

func TestAll_AbsentSourceIsMismatch(t *testing.T) {
	c, g, _ := sources("a")
	candidates := internalmodels.NewByLocation[internalmodels.CandidateTable](1)
	candidates.Set(school.Name, c)
	greatCircle := internalmodels.NewByLocation[internalmodels.GreatCircleTable](1)
	greatCircle.Set(school.Name, g)
	routed := internalmodels.NewByLocation[internalmodels.RoutedTable](0)

	_, err := All(candidates, greatCircle, routed)
	var mismatch *RowCountMismatchError
	if !errors.As(err, &mismatch) || mismatch.Routed != Absent {
		t.Fatalf("want mismatch with absent routed table, got %v", err)
	}
}

func TestAll_PreservesOrder(t *testing.T) {
	lincoln := models.Location{Name: "Lincoln High"}
	candidates := internalmodels.NewByLocation[internalmodels.CandidateTable](2)
	greatCircle := internalmodels.NewByLocation[internalmodels.GreatCircleTable](2)
	routed := internalmodels.NewByLocation[internalmodels.RoutedTable](2)
	for _, loc := range []models.Location{lincoln, school} {
		candidates.Set(loc.Name, internalmodels.CandidateTable{Location: loc})
		greatCircle.Set(loc.Name, internalmodels.GreatCircleTable{Location: loc})
		routed.Set(loc.Name, internalmodels.RoutedTable{Location: loc})
	}

	out, err := All(candidates, greatCircle, routed)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if keys := out.Keys(); keys[0] != lincoln.Name || keys[1] != school.Name {
		t.Fatalf("keys = %v", keys)
	}
}
