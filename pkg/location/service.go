// Package location resolves place names to coordinates through Nominatim.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"eatery/models"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

var ErrNoResults = errors.New("no geocoding results")

// NominatimResponse is shaped for the search API response.
type NominatimResponse []struct {
	PlaceID     int64   `json:"place_id"`
	OsmType     string  `json:"osm_type"`
	OsmID       int64   `json:"osm_id"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Class       string  `json:"class"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
}

type Geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	// Suffix is appended to every query, e.g. "Los Angeles, CA".
	Suffix string
}

func NewGeocoder(baseURL string, httpClient *http.Client) *Geocoder {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Geocoder{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "golang-nominatim-client/1.0",
	}
}

// Geocode looks up a place name and returns the coordinates of the best match.
func (g *Geocoder) Geocode(ctx context.Context, query string) (models.Coordinates, error) {
	if g.Suffix != "" {
		query = query + ", " + g.Suffix
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode()), nil)
	if err != nil {
		return models.Coordinates{}, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return models.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinates{}, fmt.Errorf("nominatim: unexpected status: %s", resp.Status)
	}

	var results NominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return models.Coordinates{}, fmt.Errorf("nominatim: decode: %w", err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, fmt.Errorf("%w for %q", ErrNoResults, query)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("nominatim: lat %q: %w", first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("nominatim: lon %q: %w", first.Lon, err)
	}
	log.Printf("Geocoded %q to %.6f,%.6f (%s)", query, lat, lon, first.DisplayName)
	return models.Coordinates{Lat: lat, Lon: lon}, nil
}
