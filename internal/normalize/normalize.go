// Package normalize flattens raw places responses into candidate tables.
package normalize

import (
	"github.com/google/uuid"

	internalmodels "eatery/internal/models"
	"eatery/models"
	"eatery/pkg/places"
)

// IDFunc generates candidate ids.
type IDFunc func() string

// NewID is the default IDFunc.
func NewID() string {
	return uuid.NewString()
}

type Normalizer struct {
	newID IDFunc
}

// NewNormalizer returns a Normalizer using newID, or random UUIDs when nil.
func NewNormalizer(newID IDFunc) *Normalizer {
	if newID == nil {
		newID = NewID
	}
	return &Normalizer{newID: newID}
}

// Table flattens every page for one location. Missing optional fields become
// the missing-value sentinel; an empty result list gives a zero-row table.
func (n *Normalizer) Table(loc models.Location, pages []places.SearchResponse) internalmodels.CandidateTable {
	table := internalmodels.CandidateTable{Location: loc, Candidates: []internalmodels.Candidate{}}
	for _, page := range pages {
		for _, r := range page.Results {
			table.Candidates = append(table.Candidates, internalmodels.Candidate{
				ID:   n.newID(),
				Name: r.Name,
				Coordinates: models.Coordinates{
					Lat: r.Geometry.Location.Lat,
					Lon: r.Geometry.Location.Lng,
				},
				RatingCount: internalmodels.FromPtr(r.UserRatingsTotal),
				Rating:      internalmodels.FromPtr(r.Rating),
				PriceLevel:  internalmodels.FromPtr(r.PriceLevel),
			})
		}
	}
	return table
}

// Normalize builds a candidate table for every location in raw, keeping the
// order of locations. Locations absent from raw are skipped.
func (n *Normalizer) Normalize(raw *internalmodels.ByLocation[[]places.SearchResponse], locations []models.Location) *internalmodels.ByLocation[internalmodels.CandidateTable] {
	out := internalmodels.NewByLocation[internalmodels.CandidateTable](len(locations))
	for _, loc := range locations {
		pages, ok := raw.Get(loc.Name)
		if !ok {
			continue
		}
		out.Set(loc.Name, n.Table(loc, pages))
	}
	return out
}
