package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Number is a numeric cell whose NaN value is the missing-value sentinel.
// Missing is distinct from zero: a venue without a price level is Missing,
// a venue with price level 0 is Number(0).
type Number float64

// Missing returns the missing-value sentinel.
func Missing() Number {
	return Number(math.NaN())
}

// Some wraps a present value.
func Some(v float64) Number {
	return Number(v)
}

// FromPtr maps nil to Missing.
func FromPtr(v *float64) Number {
	if v == nil {
		return Missing()
	}
	return Number(*v)
}

func (n Number) IsMissing() bool {
	return math.IsNaN(float64(n))
}

func (n Number) Float64() float64 {
	return float64(n)
}

// Ptr returns nil for a missing value, which is how the Postgres layer stores NULL.
func (n Number) Ptr() *float64 {
	if n.IsMissing() {
		return nil
	}
	v := float64(n)
	return &v
}

// String renders missing as the empty string, otherwise the shortest
// representation that round-trips.
func (n Number) String() string {
	if n.IsMissing() {
		return ""
	}
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.IsMissing() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(n))
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Missing()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}
