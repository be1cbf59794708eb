package repository

import (
	"context"

	"shuttle/internal/domain"
)

// WaypointRepository defines read-only access to campus waypoints.
type WaypointRepository interface {
	// GetByName retrieves a waypoint whose normalized name equals name.
	GetByName(ctx context.Context, name string) (*domain.Waypoint, error)

	// Search retrieves the first waypoint whose normalized name contains
	// name, ordered by point order.
	Search(ctx context.Context, name string) (*domain.Waypoint, error)

	// GetAll retrieves all waypoints ordered by point order.
	GetAll(ctx context.Context) ([]*domain.Waypoint, error)
}
