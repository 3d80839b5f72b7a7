package models

import "eatery/models"

// Candidate is one point of interest returned by the places provider for a
// single reference location.
type Candidate struct {
	ID          string             `json:"candidate_id"`
	Name        string             `json:"listing_name"`
	Coordinates models.Coordinates `json:"coordinates"`
	RatingCount Number             `json:"total_user_ratings"`
	Rating      Number             `json:"ratings"`
	PriceLevel  Number             `json:"price_levels"`
}

// CandidateTable holds the candidates of one reference location in provider
// order.
type CandidateTable struct {
	Location   models.Location `json:"location"`
	Candidates []Candidate     `json:"candidates"`
}

func (t CandidateTable) Len() int {
	return len(t.Candidates)
}

// Destinations returns candidate coordinates in row order.
func (t CandidateTable) Destinations() []models.Coordinates {
	out := make([]models.Coordinates, len(t.Candidates))
	for i, c := range t.Candidates {
		out[i] = c.Coordinates
	}
	return out
}
