package repository

import (
	"context"

	"shuttle/internal/domain"
)

// ShuttleRepository defines the persistence operations for shuttles.
type ShuttleRepository interface {
	// Create persists a new shuttle.
	Create(ctx context.Context, shuttle *domain.Shuttle) error

	// GetByID retrieves a shuttle by ID.
	GetByID(ctx context.Context, id string) (*domain.Shuttle, error)

	// AddDistance atomically adds incrementKm to the shuttle's total distance.
	AddDistance(ctx context.Context, id string, incrementKm float64) error

	// UpdateStatus updates the status of a shuttle.
	UpdateStatus(ctx context.Context, id string, status domain.ShuttleStatus) error
}
