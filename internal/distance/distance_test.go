package distance

import (
	"context"
	"errors"
	"math"
	"testing"

	internalmodels "eatery/internal/models"
	"eatery/models"
	"eatery/pkg/geo"
	"eatery/pkg/routing"
)

var school = models.Location{Name: "Roosevelt High", Coordinates: models.Coordinates{Lat: 34.0, Lon: -118.0}}

func candidates(coords ...models.Coordinates) internalmodels.CandidateTable {
	t := internalmodels.CandidateTable{Location: school}
	for i, c := range coords {
		t.Candidates = append(t.Candidates, internalmodels.Candidate{
			ID:          string(rune('a' + i)),
			Name:        "venue",
			Coordinates: c,
		})
	}
	return t
}

func TestGreatCircle_OneEntryPerCandidateInOrder(t *testing.T) {
	table := candidates(
		models.Coordinates{Lat: 34.01, Lon: -118.01},
		models.Coordinates{Lat: 34.0, Lon: -118.0},
		models.Coordinates{Lat: 33.9, Lon: -117.9},
	)
	tables := internalmodels.NewByLocation[internalmodels.CandidateTable](1)
	tables.Set(school.Name, table)

	out, err := GreatCircle(tables, []models.Location{school}, geo.Miles)
	if err != nil {
		t.Fatalf("GreatCircle: %v", err)
	}
	got, _ := out.Get(school.Name)
	if got.Len() != table.Len() {
		t.Fatalf("got %d rows, want %d", got.Len(), table.Len())
	}
	for i, row := range got.Rows {
		if row.CandidateID != table.Candidates[i].ID {
			t.Fatalf("row %d candidate = %q, want %q", i, row.CandidateID, table.Candidates[i].ID)
		}
		want := geo.Distance(school.Coordinates, table.Candidates[i].Coordinates, geo.Miles)
		if math.Abs(row.Distance.Float64()-want) > 1e-12 {
			t.Fatalf("row %d distance = %v, want %v", i, row.Distance, want)
		}
	}
	if got.Rows[1].Distance != 0 {
		t.Fatalf("identical coordinates should give 0, got %v", got.Rows[1].Distance)
	}
	if got.Column() != "haversine_distance (mi)" {
		t.Fatalf("column = %q", got.Column())
	}
}

func TestGreatCircle_UnknownLocation(t *testing.T) {
	tables := internalmodels.NewByLocation[internalmodels.CandidateTable](1)
	tables.Set("Nowhere High", internalmodels.CandidateTable{})

	_, err := GreatCircle(tables, []models.Location{school}, geo.Kilometers)
	if !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("want ErrUnknownLocation, got %v", err)
	}
}

func TestGreatCircle_UnknownUnit(t *testing.T) {
	table := candidates(models.Coordinates{Lat: 34.01, Lon: -118.01})
	if _, err := GreatCircleOne(school, table, geo.Unit("yards")); !errors.Is(err, geo.ErrUnknownUnit) {
		t.Fatalf("GreatCircleOne: want ErrUnknownUnit, got %v", err)
	}

	tables := internalmodels.NewByLocation[internalmodels.CandidateTable](1)
	tables.Set(school.Name, table)
	if _, err := GreatCircle(tables, []models.Location{school}, geo.Unit("yards")); !errors.Is(err, geo.ErrUnknownUnit) {
		t.Fatalf("GreatCircle: want ErrUnknownUnit, got %v", err)
	}
}

type fakeMatrix struct {
	calls    []routing.Request
	response *routing.MatrixResponse
	err      error
}

func (f *fakeMatrix) DistanceMatrix(_ context.Context, req routing.Request) (*routing.MatrixResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func ok(dist, dur string) routing.Element {
	return routing.Element{
		Status:   routing.StatusOK,
		Distance: routing.TextValue{Text: dist},
		Duration: routing.TextValue{Text: dur},
	}
}

func matrix(elements ...routing.Element) *routing.MatrixResponse {
	return &routing.MatrixResponse{Status: routing.StatusOK, Rows: []routing.Row{{Elements: elements}}}
}

func TestRouter_ComputeOne(t *testing.T) {
	table := candidates(
		models.Coordinates{Lat: 34.01, Lon: -118.01},
		models.Coordinates{Lat: 33.99, Lon: -117.99},
		models.Coordinates{Lat: 34.02, Lon: -118.02},
	)
	api := &fakeMatrix{response: matrix(
		ok("1.2 km", "5 mins"),
		routing.Element{Status: routing.StatusZeroResults},
		ok("3.4 km", "1 min"),
	)}

	got, err := NewRouter(api, routing.Metric).ComputeOne(context.Background(), school, table, routing.Driving)
	if err != nil {
		t.Fatalf("ComputeOne: %v", err)
	}
	if len(api.calls) != 1 {
		t.Fatalf("want exactly one batched call, got %d", len(api.calls))
	}
	if n := len(api.calls[0].Destinations); n != 3 {
		t.Fatalf("want 3 destinations in the call, got %d", n)
	}
	if got.Len() != 3 {
		t.Fatalf("got %d rows, want 3", got.Len())
	}
	if got.Rows[0].Distance != 1.2 || got.Rows[0].Duration != 5 {
		t.Fatalf("row 0 = %+v", got.Rows[0])
	}
	if !got.Rows[1].Distance.IsMissing() || !got.Rows[1].Duration.IsMissing() {
		t.Fatalf("ZERO_RESULTS should be missing, got %+v", got.Rows[1])
	}
	if got.Rows[2].CandidateID != table.Candidates[2].ID {
		t.Fatalf("row 2 candidate = %q", got.Rows[2].CandidateID)
	}
	if got.DistanceColumn() != "distance_from_school (km)" || got.DurationColumn() != "driving duration (mins)" {
		t.Fatalf("columns = %q, %q", got.DistanceColumn(), got.DurationColumn())
	}
}

func TestRouter_ComputeOne_UnitMismatch(t *testing.T) {
	table := candidates(models.Coordinates{Lat: 34.01}, models.Coordinates{Lat: 34.02})
	api := &fakeMatrix{response: matrix(ok("850 m", "3 mins"), ok("1.2 km", "5 mins"))}

	_, err := NewRouter(api, routing.Metric).ComputeOne(context.Background(), school, table, routing.Walking)
	var mismatch *UnitMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("want UnitMismatchError, got %v", err)
	}
	if mismatch.Field != "distance" || len(mismatch.Units) != 2 {
		t.Fatalf("unexpected mismatch: %+v", mismatch)
	}
}

func TestRouter_ComputeOne_FoldsMixedDurationUnits(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  []float64
		unit  string
	}{
		{"minutes next to a whole hour", []string{"45 mins", "1 hour", "1 hour 5 mins"}, []float64{45, 60, 65}, "mins"},
		{"compound next to plain hours", []string{"1 hour 5 mins", "2 hours"}, []float64{65, 120}, "mins"},
		{"hours only stay hours", []string{"1 hour", "2 hours"}, []float64{1, 2}, "hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coords := make([]models.Coordinates, len(tt.texts))
			elements := make([]routing.Element, len(tt.texts))
			for i, text := range tt.texts {
				coords[i] = models.Coordinates{Lat: 34 + float64(i)/100}
				elements[i] = ok("10 km", text)
			}
			api := &fakeMatrix{response: matrix(elements...)}

			got, err := NewRouter(api, routing.Metric).ComputeOne(context.Background(), school, candidates(coords...), routing.Driving)
			if err != nil {
				t.Fatalf("ComputeOne: %v", err)
			}
			for i, want := range tt.want {
				if d := got.Rows[i].Duration.Float64(); d != want {
					t.Errorf("row %d duration = %v, want %v", i, d, want)
				}
			}
			if got.DurationUnit != tt.unit {
				t.Errorf("duration unit = %q, want %q", got.DurationUnit, tt.unit)
			}
		})
	}
}

func TestRouter_ComputeOne_UnconvertibleDurationLabels(t *testing.T) {
	table := candidates(models.Coordinates{Lat: 34.01}, models.Coordinates{Lat: 34.02})
	api := &fakeMatrix{response: matrix(ok("1 km", "5 mins"), ok("1 km", "2 fortnights"))}

	_, err := NewRouter(api, routing.Metric).ComputeOne(context.Background(), school, table, routing.Driving)
	var mismatch *UnitMismatchError
	if !errors.As(err, &mismatch) || mismatch.Field != "duration" {
		t.Fatalf("want duration UnitMismatchError, got %v", err)
	}
}

func TestRouter_ComputeOne_AllUnreachableUsesFallbackUnits(t *testing.T) {
	table := candidates(models.Coordinates{Lat: 34.01})
	api := &fakeMatrix{response: matrix(routing.Element{Status: routing.StatusZeroResults})}

	got, err := NewRouter(api, routing.Imperial).ComputeOne(context.Background(), school, table, routing.Transit)
	if err != nil {
		t.Fatalf("ComputeOne: %v", err)
	}
	if got.DistanceUnit != "mi" || got.DurationUnit != "mins" {
		t.Fatalf("fallback units = %q, %q", got.DistanceUnit, got.DurationUnit)
	}
}

func TestRouter_ComputeOne_EmptyTableMakesNoCall(t *testing.T) {
	api := &fakeMatrix{}
	got, err := NewRouter(api, "").ComputeOne(context.Background(), school, internalmodels.CandidateTable{}, routing.Driving)
	if err != nil {
		t.Fatalf("ComputeOne: %v", err)
	}
	if len(api.calls) != 0 || got.Len() != 0 {
		t.Fatalf("want no call and no rows, got %d calls %d rows", len(api.calls), got.Len())
	}
}

func TestRouter_ComputeOne_Failures(t *testing.T) {
	table := candidates(models.Coordinates{Lat: 34.01}, models.Coordinates{Lat: 34.02})
	tests := []struct {
		name  string
		api   *fakeMatrix
		check func(t *testing.T, err error)
	}{
		{
			name: "provider failure",
			api:  &fakeMatrix{err: &routing.StatusError{Status: "REQUEST_DENIED"}},
			check: func(t *testing.T, err error) {
				var statusErr *routing.StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("want routing.StatusError, got %v", err)
				}
			},
		},
		{
			name: "element count differs from destinations",
			api:  &fakeMatrix{response: matrix(ok("1 km", "2 mins"))},
			check: func(t *testing.T, err error) {
				var shapeErr *ShapeError
				if !errors.As(err, &shapeErr) || shapeErr.Want != 2 || shapeErr.Got != 1 {
					t.Fatalf("want ShapeError 2/1, got %v", err)
				}
			},
		},
		{
			name: "unparseable text",
			api:  &fakeMatrix{response: matrix(ok("far", "2 mins"), ok("1 km", "2 mins"))},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, routing.ErrMalformedMagnitude) {
					t.Fatalf("want ErrMalformedMagnitude, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRouter(tt.api, routing.Metric).ComputeOne(context.Background(), school, table, routing.Driving)
			tt.check(t, err)
		})
	}
}

func TestRouter_Compute_KeepsLocationOrder(t *testing.T) {
	lincoln := models.Location{Name: "Lincoln High", Coordinates: models.Coordinates{Lat: 34.07, Lon: -118.21}}
	tables := internalmodels.NewByLocation[internalmodels.CandidateTable](2)
	tables.Set(lincoln.Name, internalmodels.CandidateTable{Location: lincoln})
	tables.Set(school.Name, internalmodels.CandidateTable{Location: school})

	out, err := NewRouter(&fakeMatrix{}, routing.Metric).Compute(context.Background(), tables, []models.Location{school, lincoln}, routing.Driving)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	keys := out.Keys()
	if keys[0] != lincoln.Name || keys[1] != school.Name {
		t.Fatalf("keys = %v, want candidate-table order", keys)
	}
}
