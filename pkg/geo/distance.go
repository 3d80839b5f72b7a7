// Package geo computes great-circle distances between coordinates.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"eatery/models"
)

// EarthRadiusKM is the mean Earth radius (IUGG).
const EarthRadiusKM = 6371.0088

// Unit is a length unit a distance can be reported in.
type Unit string

const (
	Kilometers    Unit = "km"
	Meters        Unit = "m"
	Miles         Unit = "mi"
	NauticalMiles Unit = "nmi"
	Feet          Unit = "ft"
	Inches        Unit = "in"
)

var ErrUnknownUnit = errors.New("unknown distance unit")

// per kilometer
var conversions = map[Unit]float64{
	Kilometers:    1.0,
	Meters:        1000.0,
	Miles:         0.621371192,
	NauticalMiles: 0.539956803,
	Feet:          3280.839895013,
	Inches:        39370.078740157,
}

// ParseUnit accepts the unit abbreviations above, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := conversions[u]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
	return u, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Haversine returns the central angle between two points in radians.
func Haversine(a, b models.Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon) - toRadians(a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, h)
	return 2 * math.Asin(math.Sqrt(h))
}

// Distance returns the great-circle distance between a and b in unit.
// An unknown unit falls back to kilometers; use ParseUnit to validate input.
func Distance(a, b models.Coordinates, unit Unit) float64 {
	factor, ok := conversions[unit]
	if !ok {
		factor = 1.0
	}
	return EarthRadiusKM * Haversine(a, b) * factor
}
