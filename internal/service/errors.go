package service

import "errors"

var (
	// ErrAlreadyAccepted is returned when accepting a request that is no
	// longer pending. The caller lost a race and should refresh its view,
	// not retry.
	ErrAlreadyAccepted = errors.New("request already accepted")

	// ErrTripAlreadyOngoing is returned when starting a trip while one is
	// still ongoing.
	ErrTripAlreadyOngoing = errors.New("trip already ongoing")

	// ErrNoOngoingTrip is returned when ending a trip while none is ongoing.
	ErrNoOngoingTrip = errors.New("no ongoing trip")

	// ErrInvalidShuttleID is returned when the shuttle ID is empty.
	ErrInvalidShuttleID = errors.New("invalid shuttle id")

	// ErrInvalidRequestID is returned when the route request ID is empty.
	ErrInvalidRequestID = errors.New("invalid request id")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrMissingLocationName is returned when a route request omits its
	// from or to location.
	ErrMissingLocationName = errors.New("from and to locations are required")
)
