// Package search issues one nearby-search call per reference location.
package search

import (
	"context"
	"errors"
	"fmt"
	"log"

	internalmodels "eatery/internal/models"
	"eatery/models"
	"eatery/pkg/places"
)

var ErrInvalidRadius = errors.New("radius must be positive")

// PlacesAPI is the authenticated places provider.
type PlacesAPI interface {
	TextSearch(ctx context.Context, req places.Request) (*places.SearchResponse, error)
}

// Query is the text query, radius in meters and open-now filter shared by
// every location of a run.
type Query struct {
	Text    string
	Radius  float64
	OpenNow bool
}

func (q Query) Validate() error {
	if q.Radius <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, q.Radius)
	}
	return nil
}

type Searcher struct {
	api PlacesAPI
}

func NewSearcher(api PlacesAPI) *Searcher {
	return &Searcher{api: api}
}

// SearchOne returns the raw response pages for one location. Only the first
// page is requested.
func (s *Searcher) SearchOne(ctx context.Context, loc models.Location, q Query) ([]places.SearchResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.api.TextSearch(ctx, places.Request{
		Query:    q.Text,
		Location: loc.Coordinates,
		Radius:   q.Radius,
		OpenNow:  q.OpenNow,
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", loc.Name, err)
	}
	log.Printf("Found %d candidates for %q", len(resp.Results), loc.Name)
	return []places.SearchResponse{*resp}, nil
}

// Search calls SearchOne for every location in order and stops at the first
// provider failure.
func (s *Searcher) Search(ctx context.Context, locations []models.Location, q Query) (*internalmodels.ByLocation[[]places.SearchResponse], error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := internalmodels.NewByLocation[[]places.SearchResponse](len(locations))
	for _, loc := range locations {
		pages, err := s.SearchOne(ctx, loc, q)
		if err != nil {
			return nil, err
		}
		out.Set(loc.Name, pages)
	}
	return out, nil
}
