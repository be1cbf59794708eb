package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, shuttle_id, start_time, end_time, distance_km, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var endTime sql.NullTime
	if !trip.EndTime.IsZero() {
		endTime = sql.NullTime{Time: trip.EndTime, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.ShuttleID,
		trip.StartTime,
		endTime,
		trip.DistanceKm,
		trip.Status,
	)

	return err
}

// GetOngoing retrieves the ongoing trip for a shuttle.
// Returns nil if no trip is ongoing.
func (r *TripRepository) GetOngoing(ctx context.Context, shuttleID string) (*domain.Trip, error) {
	query := `
		SELECT id, shuttle_id, start_time, end_time, distance_km, status
		FROM trips
		WHERE shuttle_id = $1 AND status = $2
		ORDER BY start_time DESC
		LIMIT 1
	`

	trip, err := r.scanTrip(r.q.QueryRowContext(ctx, query, shuttleID, domain.TripStatusOngoing))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return trip, nil
}

// AddDistanceToOngoing adds incrementKm to the ongoing trip's distance.
// A no-op when no trip is ongoing.
func (r *TripRepository) AddDistanceToOngoing(ctx context.Context, shuttleID string, incrementKm float64) error {
	query := `
		UPDATE trips
		SET distance_km = distance_km + $1
		WHERE shuttle_id = $2 AND status = $3
	`

	_, err := r.q.ExecContext(ctx, query, incrementKm, shuttleID, domain.TripStatusOngoing)
	return err
}

// CloseOngoing marks the ongoing trip completed with the given end time.
// Returns the closed trip, or nil if no trip was ongoing.
func (r *TripRepository) CloseOngoing(ctx context.Context, shuttleID string, endTime time.Time) (*domain.Trip, error) {
	query := `
		UPDATE trips
		SET status = $1, end_time = $2
		WHERE shuttle_id = $3 AND status = $4
		RETURNING id, shuttle_id, start_time, end_time, distance_km, status
	`

	trip, err := r.scanTrip(r.q.QueryRowContext(ctx, query,
		domain.TripStatusCompleted, endTime, shuttleID, domain.TripStatusOngoing))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return trip, nil
}

// SumDistanceForDate returns the summed distance of trips started on the
// given calendar day.
func (r *TripRepository) SumDistanceForDate(ctx context.Context, shuttleID string, day time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(distance_km), 0)
		FROM trips
		WHERE shuttle_id = $1 AND start_time >= $2 AND start_time < $3
	`

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var total float64
	if err := r.q.QueryRowContext(ctx, query, shuttleID, dayStart, dayEnd).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func (r *TripRepository) scanTrip(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip
	var endTime sql.NullTime

	if err := row.Scan(
		&trip.ID,
		&trip.ShuttleID,
		&trip.StartTime,
		&endTime,
		&trip.DistanceKm,
		&trip.Status,
	); err != nil {
		return nil, err
	}

	if endTime.Valid {
		trip.EndTime = endTime.Time
	}

	return &trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
