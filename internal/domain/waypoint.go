package domain

import "strings"

// Waypoint is a named campus location with fixed coordinates.
// Waypoints are immutable reference data.
type Waypoint struct {
	ID          string
	Name        string
	Latitude    float64
	Longitude   float64
	PointOrder  int
	Description string
}

// NormalizeWaypointName produces the lookup key for a waypoint name:
// lowercased, trimmed, with runs of whitespace collapsed to single spaces.
func NormalizeWaypointName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
