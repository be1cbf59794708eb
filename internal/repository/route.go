package repository

import (
	"context"
	"time"

	"shuttle/internal/domain"
)

// RouteRequestRepository defines the persistence operations for route requests.
type RouteRequestRepository interface {
	// Create persists a new route request.
	Create(ctx context.Context, request *domain.RouteRequest) error

	// GetByID retrieves a route request by ID.
	GetByID(ctx context.Context, id string) (*domain.RouteRequest, error)

	// GetByIDForUpdate retrieves a route request by ID, taking a row lock
	// when running inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.RouteRequest, error)

	// List retrieves requests ordered newest-first by request time.
	// status "all" bypasses the status filter.
	List(ctx context.Context, status string, limit int) ([]*domain.RouteRequest, error)

	// UpdateStatus updates the status of a route request.
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error
}

// ActiveRouteRepository defines the persistence operations for active routes.
type ActiveRouteRepository interface {
	// Create persists a new active route.
	Create(ctx context.Context, route *domain.ActiveRoute) error

	// GetActive retrieves the active route for a shuttle.
	// Returns nil if none is active.
	GetActive(ctx context.Context, shuttleID string) (*domain.ActiveRoute, error)

	// RetireActive marks every active route for the shuttle completed and
	// returns the request IDs the retired routes were created from.
	RetireActive(ctx context.Context, shuttleID string, completedAt time.Time) ([]string, error)
}
