// Package geo provides pure great-circle math for distance and ETA
// calculations. No state, no validation; callers supply well-formed
// decimal-degree coordinates.
package geo

import "math"

const (
	// EarthRadiusKm is the sphere radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// DefaultSpeedKmh is the cruising speed assumed for a campus shuttle
	// when no usable speed reading is available.
	DefaultSpeedKmh = 25.0
)

// Point is a decimal-degree coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// DistanceKm returns the great-circle distance between a and b in
// kilometers using the haversine formula.
func DistanceKm(a, b Point) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	deltaLat := degreesToRadians(b.Lat - a.Lat)
	deltaLng := degreesToRadians(b.Lng - a.Lng)

	h := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(deltaLng/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// ETAMinutes estimates travel time from from to to at speedKmh, floored
// to whole minutes. A speed of zero or less falls back to DefaultSpeedKmh
// instead of dividing by zero.
func ETAMinutes(from, to Point, speedKmh float64) int {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	hours := DistanceKm(from, to) / speedKmh
	return int(hours * 60)
}
