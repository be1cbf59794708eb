package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// ActiveRouteRepository is a PostgreSQL implementation of repository.ActiveRouteRepository.
type ActiveRouteRepository struct {
	q Querier
}

// NewActiveRouteRepository creates a new PostgreSQL active route repository.
func NewActiveRouteRepository(db *sql.DB) *ActiveRouteRepository {
	return &ActiveRouteRepository{q: db}
}

// NewActiveRouteRepositoryWithTx creates an active route repository using a transaction.
func NewActiveRouteRepositoryWithTx(tx *sql.Tx) *ActiveRouteRepository {
	return &ActiveRouteRepository{q: tx}
}

// Create persists a new active route.
func (r *ActiveRouteRepository) Create(ctx context.Context, route *domain.ActiveRoute) error {
	query := `
		INSERT INTO active_routes (id, shuttle_id, request_id, from_location, to_location, started_at, completed_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var completedAt sql.NullTime
	if !route.CompletedAt.IsZero() {
		completedAt = sql.NullTime{Time: route.CompletedAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		route.ID,
		route.ShuttleID,
		route.RequestID,
		route.FromLocation,
		route.ToLocation,
		route.StartedAt,
		completedAt,
		route.Status,
	)

	return err
}

// GetActive retrieves the active route for a shuttle.
// Returns nil if none is active.
func (r *ActiveRouteRepository) GetActive(ctx context.Context, shuttleID string) (*domain.ActiveRoute, error) {
	query := `
		SELECT id, shuttle_id, request_id, from_location, to_location, started_at, completed_at, status
		FROM active_routes
		WHERE shuttle_id = $1 AND status = $2
		ORDER BY started_at DESC
		LIMIT 1
	`

	var route domain.ActiveRoute
	var completedAt sql.NullTime

	err := r.q.QueryRowContext(ctx, query, shuttleID, domain.RouteStatusActive).Scan(
		&route.ID,
		&route.ShuttleID,
		&route.RequestID,
		&route.FromLocation,
		&route.ToLocation,
		&route.StartedAt,
		&completedAt,
		&route.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if completedAt.Valid {
		route.CompletedAt = completedAt.Time
	}

	return &route, nil
}

// RetireActive marks every active route for the shuttle completed and
// returns the request IDs the retired routes were created from.
func (r *ActiveRouteRepository) RetireActive(ctx context.Context, shuttleID string, completedAt time.Time) ([]string, error) {
	query := `
		UPDATE active_routes
		SET status = $1, completed_at = $2
		WHERE shuttle_id = $3 AND status = $4
		RETURNING request_id
	`

	rows, err := r.q.QueryContext(ctx, query,
		domain.RouteStatusCompleted, completedAt, shuttleID, domain.RouteStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requestIDs []string
	for rows.Next() {
		var requestID string
		if err := rows.Scan(&requestID); err != nil {
			return nil, err
		}
		requestIDs = append(requestIDs, requestID)
	}

	return requestIDs, rows.Err()
}

// Ensure ActiveRouteRepository implements repository.ActiveRouteRepository.
var _ repository.ActiveRouteRepository = (*ActiveRouteRepository)(nil)
