package routing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedMagnitude = errors.New("malformed magnitude text")

// Magnitude is a number with the unit label it was written in.
type Magnitude struct {
	Value float64
	Unit  string
}

var unitAliases = map[string]string{
	"sec":   "secs",
	"secs":  "secs",
	"min":   "mins",
	"mins":  "mins",
	"hour":  "hours",
	"hours": "hours",
	"day":   "days",
	"days":  "days",
}

// seconds per duration unit
var durationSeconds = map[string]float64{
	"secs":  1,
	"mins":  60,
	"hours": 3600,
	"days":  86400,
}

// CanonicalUnit folds singular and plural labels together ("min" and "mins").
func CanonicalUnit(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if c, ok := unitAliases[label]; ok {
		return c
	}
	return label
}

// ParseMagnitude reads provider text such as "1.2 km", "1,204 mi" or
// "5 mins". Compound durations ("1 hour 5 mins") are folded into their
// smallest unit, so "1 hour 5 mins" is 65 mins.
func ParseMagnitude(text string) (Magnitude, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 || len(fields)%2 != 0 {
		return Magnitude{}, fmt.Errorf("%w: %q", ErrMalformedMagnitude, text)
	}

	parts := make([]Magnitude, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		v, err := strconv.ParseFloat(strings.ReplaceAll(fields[i], ",", ""), 64)
		if err != nil {
			return Magnitude{}, fmt.Errorf("%w: %q: %v", ErrMalformedMagnitude, text, err)
		}
		parts = append(parts, Magnitude{Value: v, Unit: CanonicalUnit(fields[i+1])})
	}
	if len(parts) == 1 {
		return parts[0], nil
	}

	smallest := ""
	for _, p := range parts {
		secs, ok := durationSeconds[p.Unit]
		if !ok {
			return Magnitude{}, fmt.Errorf("%w: %q: compound value with unit %q", ErrMalformedMagnitude, text, p.Unit)
		}
		if smallest == "" || secs < durationSeconds[smallest] {
			smallest = p.Unit
		}
	}
	total := 0.0
	for _, p := range parts {
		total += p.Value * durationSeconds[p.Unit] / durationSeconds[smallest]
	}
	return Magnitude{Value: total, Unit: smallest}, nil
}

// SmallestDuration returns the finest of units. ok is false when units is
// empty or holds a label that is not a duration.
func SmallestDuration(units []string) (smallest string, ok bool) {
	for _, u := range units {
		secs, known := durationSeconds[u]
		if !known {
			return "", false
		}
		if smallest == "" || secs < durationSeconds[smallest] {
			smallest = u
		}
	}
	return smallest, smallest != ""
}

// ConvertDuration rescales m into unit. Both labels must be durations.
func ConvertDuration(m Magnitude, unit string) (Magnitude, error) {
	from, ok := durationSeconds[m.Unit]
	if !ok {
		return Magnitude{}, fmt.Errorf("%w: %q is not a duration unit", ErrMalformedMagnitude, m.Unit)
	}
	to, ok := durationSeconds[unit]
	if !ok {
		return Magnitude{}, fmt.Errorf("%w: %q is not a duration unit", ErrMalformedMagnitude, unit)
	}
	return Magnitude{Value: m.Value * from / to, Unit: unit}, nil
}
