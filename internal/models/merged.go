package models

import (
	"strconv"

	"eatery/models"
)

// Fixed candidate columns, in output order.
var CandidateColumns = []string{
	"candidate_id",
	"school_name",
	"listing_name",
	"latitudes",
	"longitudes",
	"total_user_ratings",
	"ratings",
	"price_levels",
}

type MergedRow struct {
	Candidate
	GreatCircle    Number `json:"great_circle_distance"`
	RoutedDistance Number `json:"routed_distance"`
	RoutedDuration Number `json:"routed_duration"`
	RouteStatus    string `json:"route_status"`
}

// MergedTable is the column-wise concatenation of a location's candidate
// table, great-circle table and routed table, in candidate order.
type MergedTable struct {
	Query           string          `json:"query,omitempty"`
	Location        models.Location `json:"location"`
	GreatCircleUnit string          `json:"great_circle_unit"`
	Mode            string          `json:"mode"`
	DistanceUnit    string          `json:"distance_unit"`
	DurationUnit    string          `json:"duration_unit"`
	Rows            []MergedRow     `json:"rows"`
}

func (t MergedTable) Len() int {
	return len(t.Rows)
}

// Columns lists the header of the tabular view.
func (t MergedTable) Columns() []string {
	cols := make([]string, 0, len(CandidateColumns)+3)
	cols = append(cols, CandidateColumns...)
	return append(cols,
		GreatCircleColumn(t.GreatCircleUnit),
		RoutedDistanceColumn(t.DistanceUnit),
		RoutedDurationColumn(t.Mode, t.DurationUnit),
	)
}

// Records renders every row as strings, missing values as empty cells.
func (t MergedTable) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = []string{
			r.ID,
			t.Location.Name,
			r.Name,
			formatFloat(r.Coordinates.Lat),
			formatFloat(r.Coordinates.Lon),
			r.RatingCount.String(),
			r.Rating.String(),
			r.PriceLevel.String(),
			r.GreatCircle.String(),
			r.RoutedDistance.String(),
			r.RoutedDuration.String(),
		}
	}
	return out
}

// Values is Records with numbers kept as float64 and missing values as nil,
// for writers that type their cells.
func (t MergedTable) Values() [][]any {
	out := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = []any{
			r.ID,
			t.Location.Name,
			r.Name,
			r.Coordinates.Lat,
			r.Coordinates.Lon,
			cell(r.RatingCount),
			cell(r.Rating),
			cell(r.PriceLevel),
			cell(r.GreatCircle),
			cell(r.RoutedDistance),
			cell(r.RoutedDuration),
		}
	}
	return out
}

func cell(n Number) any {
	if n.IsMissing() {
		return nil
	}
	return n.Float64()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
