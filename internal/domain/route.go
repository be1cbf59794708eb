package domain

import "time"

// RequestStatus represents the current status of a route request.
// Requests advance pending -> accepted -> completed and never regress.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusCompleted RequestStatus = "completed"
)

// RouteRequest is a passenger-submitted trip request awaiting driver acceptance.
type RouteRequest struct {
	ID           string
	ShuttleID    string
	FromLocation string
	ToLocation   string
	RequestedBy  string
	RequestTime  time.Time
	Status       RequestStatus
	Note         string
}

// RouteStatus represents the current status of an active route.
type RouteStatus string

const (
	RouteStatusActive    RouteStatus = "active"
	RouteStatusCompleted RouteStatus = "completed"
)

// ActiveRoute is the single in-progress from/to assignment being driven.
// At most one row per shuttle may have status active at any instant.
// RequestID links back to the route request that created it.
type ActiveRoute struct {
	ID           string
	ShuttleID    string
	RequestID    string
	FromLocation string
	ToLocation   string
	StartedAt    time.Time
	CompletedAt  time.Time
	Status       RouteStatus
}
