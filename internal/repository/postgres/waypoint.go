package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// WaypointRepository is a PostgreSQL implementation of repository.WaypointRepository.
// Waypoints are reference data; there are no write operations.
type WaypointRepository struct {
	q Querier
}

// NewWaypointRepository creates a new PostgreSQL waypoint repository.
func NewWaypointRepository(db *sql.DB) *WaypointRepository {
	return &WaypointRepository{q: db}
}

const waypointColumns = `id, name, latitude, longitude, point_order, description`

// GetByName retrieves a waypoint whose normalized name equals name.
func (r *WaypointRepository) GetByName(ctx context.Context, name string) (*domain.Waypoint, error) {
	query := `
		SELECT ` + waypointColumns + `
		FROM waypoints
		WHERE lower(name) = $1
		LIMIT 1
	`
	return r.queryOne(ctx, query, name)
}

// Search retrieves the first waypoint whose normalized name contains name,
// ordered by point order.
func (r *WaypointRepository) Search(ctx context.Context, name string) (*domain.Waypoint, error) {
	query := `
		SELECT ` + waypointColumns + `
		FROM waypoints
		WHERE lower(name) LIKE '%' || $1 || '%'
		ORDER BY point_order
		LIMIT 1
	`
	return r.queryOne(ctx, query, name)
}

func (r *WaypointRepository) queryOne(ctx context.Context, query string, name string) (*domain.Waypoint, error) {
	var wp domain.Waypoint
	var description sql.NullString

	err := r.q.QueryRowContext(ctx, query, name).Scan(
		&wp.ID,
		&wp.Name,
		&wp.Latitude,
		&wp.Longitude,
		&wp.PointOrder,
		&description,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if description.Valid {
		wp.Description = description.String
	}

	return &wp, nil
}

// GetAll retrieves all waypoints ordered by point order.
func (r *WaypointRepository) GetAll(ctx context.Context) ([]*domain.Waypoint, error) {
	query := `
		SELECT ` + waypointColumns + `
		FROM waypoints
		ORDER BY point_order
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waypoints []*domain.Waypoint
	for rows.Next() {
		var wp domain.Waypoint
		var description sql.NullString

		if err := rows.Scan(
			&wp.ID,
			&wp.Name,
			&wp.Latitude,
			&wp.Longitude,
			&wp.PointOrder,
			&description,
		); err != nil {
			return nil, err
		}

		if description.Valid {
			wp.Description = description.String
		}

		waypoints = append(waypoints, &wp)
	}

	return waypoints, rows.Err()
}

// Ensure WaypointRepository implements repository.WaypointRepository.
var _ repository.WaypointRepository = (*WaypointRepository)(nil)
