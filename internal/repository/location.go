package repository

import (
	"context"
	"time"

	"shuttle/internal/domain"
)

// LocationRepository defines the persistence operations for GPS samples.
// Samples are append-only; there is no update or delete.
type LocationRepository interface {
	// Insert appends a new location sample.
	Insert(ctx context.Context, sample *domain.LocationSample) error

	// GetLatest retrieves the most recent sample for a shuttle by timestamp.
	GetLatest(ctx context.Context, shuttleID string) (*domain.LocationSample, error)

	// AverageSpeedSince returns the mean speed of samples with speed > 0
	// recorded after since. The second return value is false when no
	// qualifying samples exist.
	AverageSpeedSince(ctx context.Context, shuttleID string, since time.Time) (float64, bool, error)
}
