package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"shuttle/internal/broadcast"
	"shuttle/internal/domain"
	"shuttle/internal/geo"
	"shuttle/internal/redis"
	"shuttle/internal/repository"
)

const (
	acceptLockTTL    = 10 * time.Second
	defaultListLimit = 20
	maxListLimit     = 100
)

// DispatchService owns the route request lifecycle and the single active
// route per shuttle.
type DispatchService struct {
	txRunner     repository.TxRunner
	requestRepo  repository.RouteRequestRepository
	activeRepo   repository.ActiveRouteRepository
	waypointRepo repository.WaypointRepository
	lockStore    redis.LockStoreInterface
	cacheStore   *redis.CacheStore
	tracking     *TrackingService
	publisher    EventPublisher
}

// NewDispatchService creates a new DispatchService. lockStore and
// cacheStore may be nil; the SQL transaction alone upholds the accept
// invariants, Redis only fast-fails obvious double-taps and caches
// waypoint lookups.
func NewDispatchService(
	txRunner repository.TxRunner,
	requestRepo repository.RouteRequestRepository,
	activeRepo repository.ActiveRouteRepository,
	waypointRepo repository.WaypointRepository,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	tracking *TrackingService,
	publisher EventPublisher,
) *DispatchService {
	return &DispatchService{
		txRunner:     txRunner,
		requestRepo:  requestRepo,
		activeRepo:   activeRepo,
		waypointRepo: waypointRepo,
		lockStore:    lockStore,
		cacheStore:   cacheStore,
		tracking:     tracking,
		publisher:    publisher,
	}
}

// SubmitRequest contains the parameters for submitting a route request.
type SubmitRequest struct {
	ShuttleID    string
	FromLocation string
	ToLocation   string
	RequestedBy  string
	RequestTime  time.Time // zero means now
	Note         string
}

// Submit creates a pending route request with a server-assigned id.
// Duplicate submissions are allowed and create independent requests.
func (s *DispatchService) Submit(ctx context.Context, req SubmitRequest) (*domain.RouteRequest, error) {
	if req.ShuttleID == "" {
		return nil, ErrInvalidShuttleID
	}
	if req.FromLocation == "" || req.ToLocation == "" {
		return nil, ErrMissingLocationName
	}

	requestTime := req.RequestTime
	if requestTime.IsZero() {
		requestTime = time.Now()
	}

	requestedBy := req.RequestedBy
	if requestedBy == "" {
		requestedBy = "passenger"
	}

	request := &domain.RouteRequest{
		ID:           uuid.New().String(),
		ShuttleID:    req.ShuttleID,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		RequestedBy:  requestedBy,
		RequestTime:  requestTime,
		Status:       domain.RequestStatusPending,
		Note:         req.Note,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.publisher.Publish(broadcast.NewRouteRequestEvent(
		request.ID, request.FromLocation, request.ToLocation, request.RequestedBy, request.RequestTime))

	return request, nil
}

// List returns requests ordered newest-first. status "all" bypasses the
// filter; limit is clamped to a sane range and truncates, never fails.
func (s *DispatchService) List(ctx context.Context, status string, limit int) ([]*domain.RouteRequest, error) {
	if status == "" {
		status = string(domain.RequestStatusPending)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return s.requestRepo.List(ctx, status, limit)
}

// Accept transitions a pending request into the shuttle's active route
// slot. First-committer-wins: concurrent accepts on the same request see
// ErrAlreadyAccepted. The whole transition runs in one serializable
// transaction; any previously active route is retired inside the same
// transaction, so no second active row is ever visible.
func (s *DispatchService) Accept(ctx context.Context, requestID string) (*domain.ActiveRoute, error) {
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}

	// Fast-fail guard against double-taps. The serializable transaction
	// below is what actually upholds the invariant.
	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireAcceptLock(ctx, requestID, acceptLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrAlreadyAccepted
		}
		defer func() {
			_ = s.lockStore.ReleaseAcceptLock(ctx, requestID)
		}()
	}

	now := time.Now()
	var route *domain.ActiveRoute

	err := s.txRunner.RunSerializable(ctx, func(st repository.Stores) error {
		request, err := st.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}

		if request.Status != domain.RequestStatusPending {
			return ErrAlreadyAccepted
		}

		// Retire any predecessor before activating the successor, inside
		// the same transaction. Its originating request is closed out too.
		retired, err := st.ActiveRoutes.RetireActive(ctx, request.ShuttleID, now)
		if err != nil {
			return err
		}
		for _, retiredRequestID := range retired {
			if err := st.Requests.UpdateStatus(ctx, retiredRequestID, domain.RequestStatusCompleted); err != nil {
				return err
			}
		}

		route = &domain.ActiveRoute{
			ID:           uuid.New().String(),
			ShuttleID:    request.ShuttleID,
			RequestID:    request.ID,
			FromLocation: request.FromLocation,
			ToLocation:   request.ToLocation,
			StartedAt:    now,
			Status:       domain.RouteStatusActive,
		}
		if err := st.ActiveRoutes.Create(ctx, route); err != nil {
			return err
		}

		return st.Requests.UpdateStatus(ctx, request.ID, domain.RequestStatusAccepted)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(broadcast.NewRouteAccepted(
		route.RequestID, route.FromLocation, route.ToLocation, route.StartedAt))

	return route, nil
}

// Complete retires the shuttle's active route and marks its originating
// request completed. Idempotent: completing with no active route returns
// completed=false and no error.
func (s *DispatchService) Complete(ctx context.Context, shuttleID string) (bool, error) {
	if shuttleID == "" {
		return false, ErrInvalidShuttleID
	}

	now := time.Now()
	var retired []string

	err := s.txRunner.RunInTx(ctx, func(st repository.Stores) error {
		var err error
		retired, err = st.ActiveRoutes.RetireActive(ctx, shuttleID, now)
		if err != nil {
			return err
		}
		for _, requestID := range retired {
			if err := st.Requests.UpdateStatus(ctx, requestID, domain.RequestStatusCompleted); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if len(retired) == 0 {
		return false, nil
	}

	s.publisher.Publish(broadcast.NewRouteCompleted(shuttleID))
	return true, nil
}

// RouteStatus describes the shuttle's active route, enriched with a live
// ETA when the data to compute one exists.
type RouteStatus struct {
	Active       bool
	FromLocation string
	ToLocation   string
	StartedAt    time.Time

	// ETA enrichment; nil when no location sample exists yet or the
	// destination does not resolve to a known waypoint.
	ETAMinutes      *int
	CurrentLocation *geo.Point
}

// Active returns the shuttle's active route. A missing location sample or
// an unresolvable destination degrades the response (no ETA fields), it
// is not an error.
func (s *DispatchService) Active(ctx context.Context, shuttleID string) (*RouteStatus, error) {
	route, err := s.activeRepo.GetActive(ctx, shuttleID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return &RouteStatus{Active: false}, nil
	}

	status := &RouteStatus{
		Active:       true,
		FromLocation: route.FromLocation,
		ToLocation:   route.ToLocation,
		StartedAt:    route.StartedAt,
	}

	current, err := s.tracking.CurrentLocation(ctx, shuttleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return status, nil
		}
		return nil, err
	}

	dest, err := s.lookupWaypoint(ctx, route.ToLocation)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return status, nil
		}
		return nil, err
	}

	avgSpeed, err := s.tracking.AverageSpeed(ctx, shuttleID)
	if err != nil {
		return nil, err
	}

	here := geo.Point{Lat: current.Latitude, Lng: current.Longitude}
	eta := geo.ETAMinutes(here, dest, avgSpeed)

	status.ETAMinutes = &eta
	status.CurrentLocation = &here
	return status, nil
}

// lookupWaypoint resolves a destination name to coordinates: normalize,
// try the exact key, then fall back to a substring search. Resolved
// lookups are cached; waypoints are immutable reference data.
func (s *DispatchService) lookupWaypoint(ctx context.Context, name string) (geo.Point, error) {
	key := domain.NormalizeWaypointName(name)

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetWaypoint(ctx, key)
		if err != nil {
			log.Printf("dispatch: waypoint cache read failed: %v", err)
		} else if cached != nil {
			return geo.Point{Lat: cached.Latitude, Lng: cached.Longitude}, nil
		}
	}

	wp, err := s.waypointRepo.GetByName(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		wp, err = s.waypointRepo.Search(ctx, key)
	}
	if err != nil {
		return geo.Point{}, err
	}

	if s.cacheStore != nil {
		cached := &redis.CachedWaypoint{Name: wp.Name, Latitude: wp.Latitude, Longitude: wp.Longitude}
		if err := s.cacheStore.SetWaypoint(ctx, key, cached); err != nil {
			log.Printf("dispatch: waypoint cache write failed: %v", err)
		}
	}

	return geo.Point{Lat: wp.Latitude, Lng: wp.Longitude}, nil
}

// Waypoints returns all campus waypoints ordered by point order.
func (s *DispatchService) Waypoints(ctx context.Context) ([]*domain.Waypoint, error) {
	return s.waypointRepo.GetAll(ctx)
}
