package domain

import "time"

// ShuttleStatus represents the current status of a shuttle.
type ShuttleStatus string

const (
	ShuttleStatusInactive ShuttleStatus = "inactive"
	ShuttleStatusActive   ShuttleStatus = "active"
)

// Shuttle represents a tracked shuttle vehicle.
type Shuttle struct {
	ID              string
	Name            string
	Status          ShuttleStatus
	TotalDistanceKm float64
	CreatedAt       time.Time
}

// LocationSample is a single GPS reading from the driver's device.
// Samples are append-only and ordered by timestamp.
type LocationSample struct {
	ID        string
	ShuttleID string
	Latitude  float64
	Longitude float64
	SpeedKmh  float64
	Heading   float64
	Accuracy  float64
	Timestamp time.Time
}
