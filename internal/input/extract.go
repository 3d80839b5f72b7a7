package input

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eatery/models"
)

// Columns names the header cells holding the reference name and coordinates.
type Columns struct {
	Name      string
	Latitude  string
	Longitude string
}

var DefaultColumns = Columns{Name: "school_name", Latitude: "latitude", Longitude: "longitude"}

var ErrDuplicateLocation = errors.New("duplicate reference location")

// MissingColumnError means the input table lacks a required column.
type MissingColumnError struct {
	Column string
	Header []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column not found: %q (have %s)", e.Column, strings.Join(e.Header, ", "))
}

// CellError points at a cell that could not be used. Row is 1-based and
// counts the header, matching what a spreadsheet shows.
type CellError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d column %q value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// Geocoder resolves a reference name when its coordinate cells are blank.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.Coordinates, error)
}

// Extract turns every data row into a Location, preserving row order. A nil
// geocoder makes blank coordinates an error.
func Extract(ctx context.Context, t *Table, cols Columns, g Geocoder) ([]models.Location, error) {
	nameIdx, err := columnIndex(t.Header, cols.Name)
	if err != nil {
		return nil, err
	}
	latIdx, err := columnIndex(t.Header, cols.Latitude)
	if err != nil {
		return nil, err
	}
	lonIdx, err := columnIndex(t.Header, cols.Longitude)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(t.Rows))
	locations := make([]models.Location, 0, len(t.Rows))
	for i, row := range t.Rows {
		rowNum := t.Line(i)
		name := strings.TrimSpace(cellAt(row, nameIdx))
		if name == "" {
			return nil, &CellError{Row: rowNum, Column: cols.Name, Err: errors.New("empty name")}
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %q on rows %d and %d", ErrDuplicateLocation, name, prev, rowNum)
		}
		seen[name] = rowNum

		latStr, lonStr := cellAt(row, latIdx), cellAt(row, lonIdx)
		loc := models.Location{Name: name, Source: models.SourceInput}

		if strings.TrimSpace(latStr) == "" && strings.TrimSpace(lonStr) == "" && g != nil {
			coords, err := g.Geocode(ctx, name)
			if err != nil {
				return nil, &CellError{Row: rowNum, Column: cols.Latitude, Err: fmt.Errorf("geocode %q: %w", name, err)}
			}
			loc.Coordinates = coords
			loc.Source = models.SourceNominatim
			locations = append(locations, loc)
			continue
		}

		lat, err := parseCoord(latStr)
		if err != nil {
			return nil, &CellError{Row: rowNum, Column: cols.Latitude, Value: latStr, Err: err}
		}
		lon, err := parseCoord(lonStr)
		if err != nil {
			return nil, &CellError{Row: rowNum, Column: cols.Longitude, Value: lonStr, Err: err}
		}
		loc.Coordinates = models.Coordinates{Lat: lat, Lon: lon}
		locations = append(locations, loc)
	}
	return locations, nil
}

// Coordinates returns the coordinate sequence, index-aligned with locations.
func Coordinates(locations []models.Location) []models.Coordinates {
	out := make([]models.Coordinates, len(locations))
	for i, l := range locations {
		out[i] = l.Coordinates
	}
	return out
}

func columnIndex(header []string, name string) (int, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range header {
		// spreadsheets exported on Windows often carry a BOM on the first cell
		h = strings.TrimPrefix(h, "\ufeff")
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i, nil
		}
	}
	return -1, &MissingColumnError{Column: name, Header: header}
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func parseCoord(val string) (float64, error) {
	// decimal comma, as written by some spreadsheet locales
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, errors.New("empty")
	}
	return strconv.ParseFloat(val, 64)
}
