package repository

import (
	"context"
	"time"

	"shuttle/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetOngoing retrieves the ongoing trip for a shuttle.
	// Returns nil if no trip is ongoing.
	GetOngoing(ctx context.Context, shuttleID string) (*domain.Trip, error)

	// AddDistanceToOngoing adds incrementKm to the ongoing trip's distance.
	// A no-op when no trip is ongoing.
	AddDistanceToOngoing(ctx context.Context, shuttleID string, incrementKm float64) error

	// CloseOngoing marks the ongoing trip completed with the given end time.
	// Returns the closed trip, or nil if no trip was ongoing.
	CloseOngoing(ctx context.Context, shuttleID string, endTime time.Time) (*domain.Trip, error)

	// SumDistanceForDate returns the summed distance of trips started on
	// the given calendar day.
	SumDistanceForDate(ctx context.Context, shuttleID string, day time.Time) (float64, error)
}
