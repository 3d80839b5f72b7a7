package models

import "fmt"

// Coordinates is a latitude/longitude pair in degrees. Values are not range
// checked; providers accept and echo whatever they are given.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the pair the way the Google web services expect it.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.7f,%.7f", c.Lat, c.Lon)
}

// Location is a reference location (a school) searches are centred on.
type Location struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
	Source      string      `json:"source,omitempty"` // e.g., "input", "nominatim"
}

const (
	SourceInput     = "input"
	SourceNominatim = "nominatim"
)
