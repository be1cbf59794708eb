package redis

import (
	"context"
	"time"
)

// LocationCacheInterface defines the interface for live position caching.
type LocationCacheInterface interface {
	UpdatePosition(ctx context.Context, shuttleID string, lat, lng float64) error
	SetLastFrame(ctx context.Context, shuttleID string, frame []byte) error
	GetLastFrame(ctx context.Context, shuttleID string) ([]byte, error)
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireAcceptLock(ctx context.Context, requestID string, ttl time.Duration) (bool, error)
	ReleaseAcceptLock(ctx context.Context, requestID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationCacheInterface = (*LocationCache)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
