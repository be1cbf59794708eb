package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// ShuttleRepository is a PostgreSQL implementation of repository.ShuttleRepository.
type ShuttleRepository struct {
	q Querier
}

// NewShuttleRepository creates a new PostgreSQL shuttle repository.
func NewShuttleRepository(db *sql.DB) *ShuttleRepository {
	return &ShuttleRepository{q: db}
}

// NewShuttleRepositoryWithTx creates a shuttle repository using a transaction.
func NewShuttleRepositoryWithTx(tx *sql.Tx) *ShuttleRepository {
	return &ShuttleRepository{q: tx}
}

// Create persists a new shuttle.
func (r *ShuttleRepository) Create(ctx context.Context, shuttle *domain.Shuttle) error {
	query := `
		INSERT INTO shuttles (id, name, status, total_distance_km, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		shuttle.ID,
		shuttle.Name,
		shuttle.Status,
		shuttle.TotalDistanceKm,
		shuttle.CreatedAt,
	)

	return err
}

// GetByID retrieves a shuttle by ID.
func (r *ShuttleRepository) GetByID(ctx context.Context, id string) (*domain.Shuttle, error) {
	query := `
		SELECT id, name, status, total_distance_km, created_at
		FROM shuttles WHERE id = $1
	`

	var shuttle domain.Shuttle
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&shuttle.ID,
		&shuttle.Name,
		&shuttle.Status,
		&shuttle.TotalDistanceKm,
		&shuttle.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &shuttle, nil
}

// AddDistance atomically adds incrementKm to the shuttle's total distance.
func (r *ShuttleRepository) AddDistance(ctx context.Context, id string, incrementKm float64) error {
	query := `
		UPDATE shuttles
		SET total_distance_km = total_distance_km + $1
		WHERE id = $2
	`

	result, err := r.q.ExecContext(ctx, query, incrementKm, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateStatus updates the status of a shuttle.
func (r *ShuttleRepository) UpdateStatus(ctx context.Context, id string, status domain.ShuttleStatus) error {
	query := `UPDATE shuttles SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure ShuttleRepository implements repository.ShuttleRepository.
var _ repository.ShuttleRepository = (*ShuttleRepository)(nil)
