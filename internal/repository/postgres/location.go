package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// LocationRepository is a PostgreSQL implementation of repository.LocationRepository.
type LocationRepository struct {
	q Querier
}

// NewLocationRepository creates a new PostgreSQL location repository.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{q: db}
}

// NewLocationRepositoryWithTx creates a location repository using a transaction.
func NewLocationRepositoryWithTx(tx *sql.Tx) *LocationRepository {
	return &LocationRepository{q: tx}
}

// Insert appends a new location sample.
func (r *LocationRepository) Insert(ctx context.Context, sample *domain.LocationSample) error {
	query := `
		INSERT INTO location_history (id, shuttle_id, latitude, longitude, speed_kmh, heading, accuracy, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		sample.ID,
		sample.ShuttleID,
		sample.Latitude,
		sample.Longitude,
		sample.SpeedKmh,
		sample.Heading,
		sample.Accuracy,
		sample.Timestamp,
	)

	return err
}

// GetLatest retrieves the most recent sample for a shuttle by timestamp.
func (r *LocationRepository) GetLatest(ctx context.Context, shuttleID string) (*domain.LocationSample, error) {
	query := `
		SELECT id, shuttle_id, latitude, longitude, speed_kmh, heading, accuracy, recorded_at
		FROM location_history
		WHERE shuttle_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var sample domain.LocationSample
	err := r.q.QueryRowContext(ctx, query, shuttleID).Scan(
		&sample.ID,
		&sample.ShuttleID,
		&sample.Latitude,
		&sample.Longitude,
		&sample.SpeedKmh,
		&sample.Heading,
		&sample.Accuracy,
		&sample.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &sample, nil
}

// AverageSpeedSince returns the mean speed of samples with speed > 0
// recorded after since. The second return value is false when no
// qualifying samples exist.
func (r *LocationRepository) AverageSpeedSince(ctx context.Context, shuttleID string, since time.Time) (float64, bool, error) {
	query := `
		SELECT AVG(speed_kmh)
		FROM location_history
		WHERE shuttle_id = $1 AND recorded_at > $2 AND speed_kmh > 0
	`

	var avg sql.NullFloat64
	if err := r.q.QueryRowContext(ctx, query, shuttleID, since).Scan(&avg); err != nil {
		return 0, false, err
	}

	if !avg.Valid {
		return 0, false, nil
	}

	return avg.Float64, true, nil
}

// Ensure LocationRepository implements repository.LocationRepository.
var _ repository.LocationRepository = (*LocationRepository)(nil)
