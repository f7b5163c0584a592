package geo

import (
	"fmt"
	"math"
	"strconv"
)

// Precision is the number of decimal places kept for captured coordinates
// (about 0.11 m at the equator).
const Precision = 6

// Round rounds a coordinate to Precision decimal places.
//
// The value goes through its decimal text form, so the result is the
// float64 closest to the correctly rounded decimal and prints with at most
// Precision fractional digits.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', Precision, 64), 64)
	if err != nil {
		return v
	}

	return r
}

// ValidateCoordinates checks that lat/lng are finite WGS84 values.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates must be finite numbers (got %v, %v)", lat, lng)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got %f)", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got %f)", lng)
	}

	return nil
}
