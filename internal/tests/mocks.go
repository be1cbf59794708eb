package tests

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"shuttle/internal/broadcast"
	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK SHUTTLE REPOSITORY
// ──────────────────────────────────────────────

// MockShuttleRepository is a mock implementation of ShuttleRepository.
type MockShuttleRepository struct {
	mu       sync.RWMutex
	shuttles map[string]*domain.Shuttle

	// Counters for verification
	AddDistanceCallCount  int32
	UpdateStatusCallCount int32

	// Error injection
	AddDistanceError  error
	UpdateStatusError error
}

// NewMockShuttleRepository creates a new mock shuttle repository.
func NewMockShuttleRepository() *MockShuttleRepository {
	return &MockShuttleRepository{
		shuttles: make(map[string]*domain.Shuttle),
	}
}

// AddShuttle adds a shuttle to the mock repository.
func (m *MockShuttleRepository) AddShuttle(shuttle *domain.Shuttle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shuttles[shuttle.ID] = shuttle
}

func (m *MockShuttleRepository) Create(ctx context.Context, shuttle *domain.Shuttle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shuttles[shuttle.ID] = shuttle
	return nil
}

func (m *MockShuttleRepository) GetByID(ctx context.Context, id string) (*domain.Shuttle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shuttle, ok := m.shuttles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *shuttle
	return &copy, nil
}

func (m *MockShuttleRepository) AddDistance(ctx context.Context, id string, incrementKm float64) error {
	atomic.AddInt32(&m.AddDistanceCallCount, 1)
	if m.AddDistanceError != nil {
		return m.AddDistanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	shuttle, ok := m.shuttles[id]
	if !ok {
		return repository.ErrNotFound
	}
	shuttle.TotalDistanceKm += incrementKm
	return nil
}

func (m *MockShuttleRepository) UpdateStatus(ctx context.Context, id string, status domain.ShuttleStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	shuttle, ok := m.shuttles[id]
	if !ok {
		return repository.ErrNotFound
	}
	shuttle.Status = status
	return nil
}

// GetShuttle returns the shuttle for test assertions.
func (m *MockShuttleRepository) GetShuttle(id string) *domain.Shuttle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shuttles[id]
}

// ──────────────────────────────────────────────
// MOCK LOCATION REPOSITORY
// ──────────────────────────────────────────────

// MockLocationRepository is a mock implementation of LocationRepository.
type MockLocationRepository struct {
	mu      sync.RWMutex
	samples []*domain.LocationSample

	// Counters for verification
	InsertCallCount int32

	// Error injection
	InsertError error
}

// NewMockLocationRepository creates a new mock location repository.
func NewMockLocationRepository() *MockLocationRepository {
	return &MockLocationRepository{}
}

func (m *MockLocationRepository) Insert(ctx context.Context, sample *domain.LocationSample) error {
	atomic.AddInt32(&m.InsertCallCount, 1)
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *sample
	m.samples = append(m.samples, &copy)
	return nil
}

func (m *MockLocationRepository) GetLatest(ctx context.Context, shuttleID string) (*domain.LocationSample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.LocationSample
	for _, s := range m.samples {
		if s.ShuttleID != shuttleID {
			continue
		}
		if latest == nil || s.Timestamp.After(latest.Timestamp) {
			latest = s
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copy := *latest
	return &copy, nil
}

func (m *MockLocationRepository) AverageSpeedSince(ctx context.Context, shuttleID string, since time.Time) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	var count int
	for _, s := range m.samples {
		if s.ShuttleID != shuttleID || s.SpeedKmh <= 0 || !s.Timestamp.After(since) {
			continue
		}
		sum += s.SpeedKmh
		count++
	}
	if count == 0 {
		return 0, false, nil
	}
	return sum / float64(count), true, nil
}

// SampleCount returns the number of stored samples for test assertions.
func (m *MockLocationRepository) SampleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.samples)
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Error injection
	CreateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetOngoing(ctx context.Context, shuttleID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.ShuttleID == shuttleID && t.Status == domain.TripStatusOngoing {
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockTripRepository) AddDistanceToOngoing(ctx context.Context, shuttleID string, incrementKm float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.ShuttleID == shuttleID && t.Status == domain.TripStatusOngoing {
			t.DistanceKm += incrementKm
		}
	}
	return nil
}

func (m *MockTripRepository) CloseOngoing(ctx context.Context, shuttleID string, endTime time.Time) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.ShuttleID == shuttleID && t.Status == domain.TripStatusOngoing {
			t.Status = domain.TripStatusCompleted
			t.EndTime = endTime
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockTripRepository) SumDistanceForDate(ctx context.Context, shuttleID string, day time.Time) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	y, mo, d := day.Date()
	var sum float64
	for _, t := range m.trips {
		ty, tmo, td := t.StartTime.Date()
		if t.ShuttleID == shuttleID && ty == y && tmo == mo && td == d {
			sum += t.DistanceKm
		}
	}
	return sum, nil
}

// GetTrip returns the trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// ──────────────────────────────────────────────
// MOCK ROUTE REQUEST REPOSITORY
// ──────────────────────────────────────────────

// MockRouteRequestRepository is a mock implementation of RouteRequestRepository.
type MockRouteRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.RouteRequest

	// Counters for verification
	UpdateStatusCallCount int32

	// Error injection
	CreateError error
}

// NewMockRouteRequestRepository creates a new mock route request repository.
func NewMockRouteRequestRepository() *MockRouteRequestRepository {
	return &MockRouteRequestRepository{
		requests: make(map[string]*domain.RouteRequest),
	}
}

func (m *MockRouteRequestRepository) Create(ctx context.Context, request *domain.RouteRequest) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *request
	m.requests[request.ID] = &copy
	return nil
}

func (m *MockRouteRequestRepository) GetByID(ctx context.Context, id string) (*domain.RouteRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	request, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *request
	return &copy, nil
}

func (m *MockRouteRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.RouteRequest, error) {
	// The mock runs under the MockTxRunner mutex, which already serializes
	// the whole transaction body.
	return m.GetByID(ctx, id)
}

func (m *MockRouteRequestRepository) List(ctx context.Context, status string, limit int) ([]*domain.RouteRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RouteRequest, 0, len(m.requests))
	for _, r := range m.requests {
		if status != "all" && string(r.Status) != status {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RequestTime.After(result[j].RequestTime)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockRouteRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	request.Status = status
	return nil
}

// GetRequest returns the request for test assertions.
func (m *MockRouteRequestRepository) GetRequest(id string) *domain.RouteRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[id]
}

// ──────────────────────────────────────────────
// MOCK ACTIVE ROUTE REPOSITORY
// ──────────────────────────────────────────────

// MockActiveRouteRepository is a mock implementation of ActiveRouteRepository.
type MockActiveRouteRepository struct {
	mu     sync.RWMutex
	routes map[string]*domain.ActiveRoute

	// Error injection
	CreateError error
}

// NewMockActiveRouteRepository creates a new mock active route repository.
func NewMockActiveRouteRepository() *MockActiveRouteRepository {
	return &MockActiveRouteRepository{
		routes: make(map[string]*domain.ActiveRoute),
	}
}

func (m *MockActiveRouteRepository) Create(ctx context.Context, route *domain.ActiveRoute) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *route
	m.routes[route.ID] = &copy
	return nil
}

func (m *MockActiveRouteRepository) GetActive(ctx context.Context, shuttleID string) (*domain.ActiveRoute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.routes {
		if r.ShuttleID == shuttleID && r.Status == domain.RouteStatusActive {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockActiveRouteRepository) RetireActive(ctx context.Context, shuttleID string, completedAt time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var retired []string
	for _, r := range m.routes {
		if r.ShuttleID == shuttleID && r.Status == domain.RouteStatusActive {
			r.Status = domain.RouteStatusCompleted
			r.CompletedAt = completedAt
			retired = append(retired, r.RequestID)
		}
	}
	return retired, nil
}

// ActiveCount returns the number of active routes for test assertions.
func (m *MockActiveRouteRepository) ActiveCount(shuttleID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.routes {
		if r.ShuttleID == shuttleID && r.Status == domain.RouteStatusActive {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK WAYPOINT REPOSITORY
// ──────────────────────────────────────────────

// MockWaypointRepository is a mock implementation of WaypointRepository.
type MockWaypointRepository struct {
	mu        sync.RWMutex
	waypoints []*domain.Waypoint
}

// NewMockWaypointRepository creates a new mock waypoint repository.
func NewMockWaypointRepository() *MockWaypointRepository {
	return &MockWaypointRepository{}
}

// AddWaypoint adds a waypoint to the mock repository.
func (m *MockWaypointRepository) AddWaypoint(wp *domain.Waypoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waypoints = append(m.waypoints, wp)
}

func (m *MockWaypointRepository) GetByName(ctx context.Context, name string) (*domain.Waypoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, wp := range m.waypoints {
		if domain.NormalizeWaypointName(wp.Name) == name {
			copy := *wp
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockWaypointRepository) Search(ctx context.Context, name string) (*domain.Waypoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	candidates := make([]*domain.Waypoint, 0)
	for _, wp := range m.waypoints {
		if strings.Contains(domain.NormalizeWaypointName(wp.Name), name) {
			candidates = append(candidates, wp)
		}
	}
	if len(candidates) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].PointOrder < candidates[j].PointOrder
	})
	copy := *candidates[0]
	return &copy, nil
}

func (m *MockWaypointRepository) GetAll(ctx context.Context) ([]*domain.Waypoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Waypoint, 0, len(m.waypoints))
	for _, wp := range m.waypoints {
		copy := *wp
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PointOrder < result[j].PointOrder
	})
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner is a mock implementation of TxRunner backed by the in-memory
// repositories. A single mutex serializes transaction bodies, standing in
// for the row locks and serializable isolation of the real database.
// Writes are applied directly, so there is no rollback; tests that need
// failure paths inject errors before the first write.
type MockTxRunner struct {
	mu     sync.Mutex
	stores repository.Stores
}

// NewMockTxRunner creates a new mock transaction runner over the given stores.
func NewMockTxRunner(stores repository.Stores) *MockTxRunner {
	return &MockTxRunner{stores: stores}
}

func (m *MockTxRunner) RunInTx(ctx context.Context, fn func(s repository.Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.stores)
}

func (m *MockTxRunner) RunSerializable(ctx context.Context, fn func(s repository.Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.stores)
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher is a mock implementation of EventPublisher.
type MockPublisher struct {
	mu     sync.Mutex
	events []broadcast.Event
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(event broadcast.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// EventsOfType returns the published events with the given type.
func (m *MockPublisher) EventsOfType(eventType string) []broadcast.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []broadcast.Event
	for _, e := range m.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Counters for verification
	AcquireCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

func (m *MockLockStore) AcquireAcceptLock(ctx context.Context, requestID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[requestID] {
		return false, nil
	}
	m.locks[requestID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseAcceptLock(ctx context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, requestID)
	return nil
}
