// Package render draws merged tables on a standalone Leaflet map.
package render

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	internalmodels "eatery/internal/models"
	"eatery/models"
)

//go:embed templates/map.html
var templatesFS embed.FS

var mapTemplate = template.Must(template.ParseFS(templatesFS, "templates/map.html"))

var ErrUnknownTheme = errors.New("unknown map theme")

// Theme selects the tile layer.
type Theme string

const (
	ThemeDefault  Theme = "default"
	ThemeDark     Theme = "dark"
	ThemePositron Theme = "positron"
)

// Fallback view when a table carries no reference coordinates.
var (
	FallbackCenter = models.Coordinates{Lat: 34.0522, Lon: -118.2437}
	DefaultZoom    = 12
)

type tiles struct {
	URL         string
	Attribution string
}

var themes = map[Theme]tiles{
	ThemeDefault: {
		URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
	},
	ThemeDark: {
		URL:         "https://cartodb-basemaps-{s}.global.ssl.fastly.net/dark_all/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
	},
	ThemePositron: {
		URL:         "https://cartodb-basemaps-{s}.global.ssl.fastly.net/light_all/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
	},
}

func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return ThemeDefault, nil
	}
	if _, ok := themes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
	}
	return t, nil
}

type Options struct {
	Theme Theme
	// Center overrides the view centre. Nil means the reference location.
	Center *models.Coordinates
	Zoom   int
}

type marker struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type reference struct {
	Name string
	Lat  float64
	Lon  float64
}

type page struct {
	Title     string
	Center    models.Coordinates
	Zoom      int
	Tiles     tiles
	Reference *reference
	Markers   []marker
}

// Map writes one HTML page with a clustered marker per row of table.
func Map(w io.Writer, table internalmodels.MergedTable, opts Options) error {
	theme := opts.Theme
	if theme == "" {
		theme = ThemeDefault
	}
	t, ok := themes[theme]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}

	p := page{
		Title:   table.Location.Name,
		Center:  FallbackCenter,
		Zoom:    opts.Zoom,
		Tiles:   t,
		Markers: make([]marker, 0, table.Len()),
	}
	if p.Zoom <= 0 {
		p.Zoom = DefaultZoom
	}
	if table.Query != "" {
		p.Title = table.Query + " near " + table.Location.Name
	}
	if c := table.Location.Coordinates; c != (models.Coordinates{}) {
		p.Center = c
		p.Reference = &reference{Name: table.Location.Name, Lat: c.Lat, Lon: c.Lon}
	}
	if opts.Center != nil {
		p.Center = *opts.Center
	}
	for _, row := range table.Rows {
		p.Markers = append(p.Markers, marker{Name: row.Name, Lat: row.Coordinates.Lat, Lon: row.Coordinates.Lon})
	}

	if err := mapTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render map %q: %w", table.Location.Name, err)
	}
	return nil
}
