package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// WaypointCacheTTL bounds how long a resolved waypoint stays cached.
// Waypoints are immutable reference data, so a long TTL is safe.
const WaypointCacheTTL = 10 * time.Minute

const waypointCachePrefix = "cache:waypoint:"

// CachedWaypoint is the cached form of a resolved waypoint lookup.
type CachedWaypoint struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// GetWaypoint retrieves a waypoint from cache by its normalized name.
// Returns nil on a cache miss.
func (s *CacheStore) GetWaypoint(ctx context.Context, name string) (*CachedWaypoint, error) {
	data, err := s.client.Get(ctx, waypointCachePrefix+name).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var wp CachedWaypoint
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, err
	}
	return &wp, nil
}

// SetWaypoint stores a resolved waypoint lookup under its normalized name.
func (s *CacheStore) SetWaypoint(ctx context.Context, name string, wp *CachedWaypoint) error {
	data, err := json.Marshal(wp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, waypointCachePrefix+name, data, WaypointCacheTTL).Err()
}
