package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusCompleted TripStatus = "completed"
)

// Trip represents a driving session during which distance accrues.
// At most one trip per shuttle may be ongoing at any time.
type Trip struct {
	ID         string
	ShuttleID  string
	StartTime  time.Time
	EndTime    time.Time
	DistanceKm float64
	Status     TripStatus
}
