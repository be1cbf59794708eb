package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	shuttleGeoKey   = "shuttles:positions"
	lastFramePrefix = "shuttles:lastframe:"
	lastFrameTTL    = 5 * time.Minute
)

// LocationCache keeps the shuttle's live position in Redis alongside the
// last broadcast frame, so a freshly connected viewer can be primed
// without waiting for the next GPS sample.
type LocationCache struct {
	client *redis.Client
}

// NewLocationCache creates a new LocationCache.
func NewLocationCache(client *redis.Client) *LocationCache {
	return &LocationCache{client: client}
}

// UpdatePosition stores a shuttle's position using GEOADD.
func (s *LocationCache) UpdatePosition(ctx context.Context, shuttleID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, shuttleGeoKey, &redis.GeoLocation{
		Name:      shuttleID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// SetLastFrame stores the most recent location_update payload for a shuttle.
func (s *LocationCache) SetLastFrame(ctx context.Context, shuttleID string, frame []byte) error {
	return s.client.Set(ctx, lastFramePrefix+shuttleID, frame, lastFrameTTL).Err()
}

// GetLastFrame retrieves the most recent location_update payload.
// Returns nil on a cache miss.
func (s *LocationCache) GetLastFrame(ctx context.Context, shuttleID string) ([]byte, error) {
	data, err := s.client.Get(ctx, lastFramePrefix+shuttleID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
