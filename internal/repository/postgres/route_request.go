package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// RouteRequestRepository is a PostgreSQL implementation of repository.RouteRequestRepository.
type RouteRequestRepository struct {
	q Querier
}

// NewRouteRequestRepository creates a new PostgreSQL route request repository.
func NewRouteRequestRepository(db *sql.DB) *RouteRequestRepository {
	return &RouteRequestRepository{q: db}
}

// NewRouteRequestRepositoryWithTx creates a route request repository using a transaction.
func NewRouteRequestRepositoryWithTx(tx *sql.Tx) *RouteRequestRepository {
	return &RouteRequestRepository{q: tx}
}

const routeRequestColumns = `id, shuttle_id, from_location, to_location, requested_by, request_time, status, note`

// Create persists a new route request.
func (r *RouteRequestRepository) Create(ctx context.Context, request *domain.RouteRequest) error {
	query := `
		INSERT INTO route_requests (id, shuttle_id, from_location, to_location, requested_by, request_time, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var note sql.NullString
	if request.Note != "" {
		note = sql.NullString{String: request.Note, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		request.ID,
		request.ShuttleID,
		request.FromLocation,
		request.ToLocation,
		request.RequestedBy,
		request.RequestTime,
		request.Status,
		note,
	)

	return err
}

// GetByID retrieves a route request by ID.
func (r *RouteRequestRepository) GetByID(ctx context.Context, id string) (*domain.RouteRequest, error) {
	query := `SELECT ` + routeRequestColumns + ` FROM route_requests WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a route request by ID with a row lock. Only
// meaningful inside a transaction; the lock serializes concurrent accept
// attempts on the same request.
func (r *RouteRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.RouteRequest, error) {
	query := `SELECT ` + routeRequestColumns + ` FROM route_requests WHERE id = $1 FOR UPDATE`
	return r.queryOne(ctx, query, id)
}

func (r *RouteRequestRepository) queryOne(ctx context.Context, query string, id string) (*domain.RouteRequest, error) {
	request, err := scanRouteRequest(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

// List retrieves requests ordered newest-first by request time.
// status "all" bypasses the status filter.
func (r *RouteRequestRepository) List(ctx context.Context, status string, limit int) ([]*domain.RouteRequest, error) {
	var rows *sql.Rows
	var err error

	if status == "all" {
		query := `
			SELECT ` + routeRequestColumns + `
			FROM route_requests
			ORDER BY request_time DESC
			LIMIT $1
		`
		rows, err = r.q.QueryContext(ctx, query, limit)
	} else {
		query := `
			SELECT ` + routeRequestColumns + `
			FROM route_requests
			WHERE status = $1
			ORDER BY request_time DESC
			LIMIT $2
		`
		rows, err = r.q.QueryContext(ctx, query, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.RouteRequest
	for rows.Next() {
		request, err := scanRouteRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

// UpdateStatus updates the status of a route request.
func (r *RouteRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	query := `UPDATE route_requests SET status = $1 WHERE id = $2`

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

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRouteRequest(s scanner) (*domain.RouteRequest, error) {
	var request domain.RouteRequest
	var note sql.NullString

	if err := s.Scan(
		&request.ID,
		&request.ShuttleID,
		&request.FromLocation,
		&request.ToLocation,
		&request.RequestedBy,
		&request.RequestTime,
		&request.Status,
		&note,
	); err != nil {
		return nil, err
	}

	if note.Valid {
		request.Note = note.String
	}

	return &request, nil
}

// Ensure RouteRequestRepository implements repository.RouteRequestRepository.
var _ repository.RouteRequestRepository = (*RouteRequestRepository)(nil)
