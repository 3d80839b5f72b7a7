package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is a transportation mode understood by the Distance Matrix service.
type Mode string

const (
	Driving   Mode = "driving"
	Walking   Mode = "walking"
	Bicycling Mode = "bicycling"
	Transit   Mode = "transit"
)

var ErrUnknownMode = errors.New("unknown transportation mode")

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Driving, Walking, Bicycling, Transit:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Units selects how the provider formats distance text.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// DistanceLabel is the distance unit assumed when no element carries one.
func (u Units) DistanceLabel() string {
	if u == Imperial {
		return "mi"
	}
	return "km"
}

// MatrixResponse is the Distance Matrix payload.
type MatrixResponse struct {
	OriginAddresses      []string `json:"origin_addresses"`
	DestinationAddresses []string `json:"destination_addresses"`
	Rows                 []Row    `json:"rows"`
	Status               string   `json:"status"`
	ErrorMessage         string   `json:"error_message,omitempty"`
}

type Row struct {
	Elements []Element `json:"elements"`
}

type Element struct {
	Status   string    `json:"status"`
	Distance TextValue `json:"distance"`
	Duration TextValue `json:"duration"`
}

// TextValue carries the provider's human readable text, e.g. "1.2 km", next
// to its machine value.
type TextValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

// Element statuses.
const (
	StatusOK                     = "OK"
	StatusNotFound               = "NOT_FOUND"
	StatusZeroResults            = "ZERO_RESULTS"
	StatusMaxRouteLengthExceeded = "MAX_ROUTE_LENGTH_EXCEEDED"
)

// NoRoute reports whether an element status means the destination cannot be
// reached, which is recorded as a missing value rather than an error.
func NoRoute(status string) bool {
	switch status {
	case StatusZeroResults, StatusNotFound, StatusMaxRouteLengthExceeded:
		return true
	}
	return false
}
