package models

import (
	"fmt"

	"eatery/models"
)

type GreatCircleRow struct {
	CandidateID string `json:"candidate_id"`
	Distance    Number `json:"distance"`
}

// GreatCircleTable is index-aligned with the CandidateTable it was computed
// from and also carries each candidate's id.
type GreatCircleTable struct {
	Location models.Location  `json:"location"`
	Unit     string           `json:"unit"`
	Rows     []GreatCircleRow `json:"rows"`
}

func (t GreatCircleTable) Len() int {
	return len(t.Rows)
}

// Column is the column header, with the unit embedded.
func (t GreatCircleTable) Column() string {
	return GreatCircleColumn(t.Unit)
}

type RoutedRow struct {
	CandidateID string `json:"candidate_id"`
	Distance    Number `json:"distance"`
	Duration    Number `json:"duration"`
	// Status is the provider's element status, e.g. OK or ZERO_RESULTS.
	Status string `json:"status"`
}

// RoutedTable is index-aligned with the CandidateTable it was computed from.
type RoutedTable struct {
	Location     models.Location `json:"location"`
	Mode         string          `json:"mode"`
	DistanceUnit string          `json:"distance_unit"`
	DurationUnit string          `json:"duration_unit"`
	Rows         []RoutedRow     `json:"rows"`
}

func (t RoutedTable) Len() int {
	return len(t.Rows)
}

func (t RoutedTable) DistanceColumn() string {
	return RoutedDistanceColumn(t.DistanceUnit)
}

func (t RoutedTable) DurationColumn() string {
	return RoutedDurationColumn(t.Mode, t.DurationUnit)
}

func GreatCircleColumn(unit string) string {
	return fmt.Sprintf("haversine_distance (%s)", unit)
}

func RoutedDistanceColumn(unit string) string {
	return fmt.Sprintf("distance_from_school (%s)", unit)
}

func RoutedDurationColumn(mode, unit string) string {
	return fmt.Sprintf("%s duration (%s)", mode, unit)
}
