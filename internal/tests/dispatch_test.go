package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"shuttle/internal/broadcast"
	"shuttle/internal/domain"
	"shuttle/internal/repository"
	"shuttle/internal/service"
)

// dispatchEnv bundles a DispatchService with its mocks.
type dispatchEnv struct {
	shuttles  *MockShuttleRepository
	locations *MockLocationRepository
	requests  *MockRouteRequestRepository
	active    *MockActiveRouteRepository
	waypoints *MockWaypointRepository
	publisher *MockPublisher
	tracking  *service.TrackingService
	dispatch  *service.DispatchService
}

func newDispatchEnv() *dispatchEnv {
	shuttles := NewMockShuttleRepository()
	locations := NewMockLocationRepository()
	trips := NewMockTripRepository()
	requests := NewMockRouteRequestRepository()
	active := NewMockActiveRouteRepository()
	waypoints := NewMockWaypointRepository()
	publisher := NewMockPublisher()

	txRunner := NewMockTxRunner(repository.Stores{
		Shuttles:     shuttles,
		Locations:    locations,
		Trips:        trips,
		Requests:     requests,
		ActiveRoutes: active,
	})

	tracking := service.NewTrackingService(txRunner, shuttles, locations, trips, nil, publisher)
	dispatch := service.NewDispatchService(txRunner, requests, active, waypoints, nil, nil, tracking, publisher)

	return &dispatchEnv{
		shuttles:  shuttles,
		locations: locations,
		requests:  requests,
		active:    active,
		waypoints: waypoints,
		publisher: publisher,
		tracking:  tracking,
		dispatch:  dispatch,
	}
}

func (e *dispatchEnv) seedCampus(t *testing.T) {
	t.Helper()
	e.shuttles.AddShuttle(&domain.Shuttle{ID: "shuttle-1", Name: "Campus Shuttle"})
	e.waypoints.AddWaypoint(&domain.Waypoint{
		ID: "wp-1", Name: "Pos P13", Latitude: -7.1633, Longitude: 112.6280, PointOrder: 1,
	})
	e.waypoints.AddWaypoint(&domain.Waypoint{
		ID: "wp-2", Name: "Ged 1 A", Latitude: -7.1650, Longitude: 112.6285, PointOrder: 2,
	})
}

func TestSubmitAndListRequests(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	ctx := context.Background()

	first, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", FromLocation: "Pos P13", ToLocation: "Ged 1 A",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if first.Status != domain.RequestStatusPending {
		t.Errorf("status = %s, want pending", first.Status)
	}
	if first.RequestedBy != "passenger" {
		t.Errorf("requested_by = %q, want default passenger", first.RequestedBy)
	}

	second, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", FromLocation: "Ged 1 A", ToLocation: "Pos P13",
		RequestedBy: "dosen", RequestTime: first.RequestTime.Add(1),
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	pending, err := env.dispatch.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("listed %d pending requests, want 2", len(pending))
	}
	if pending[0].ID != second.ID {
		t.Errorf("list not newest-first: got %s first, want %s", pending[0].ID, second.ID)
	}

	if got := env.publisher.EventsOfType(broadcast.TypeNewRouteRequest); len(got) != 2 {
		t.Errorf("published %d new_route_request events, want 2", len(got))
	}
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	ctx := context.Background()

	if _, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		FromLocation: "A", ToLocation: "B",
	}); !errors.Is(err, service.ErrInvalidShuttleID) {
		t.Errorf("error = %v, want ErrInvalidShuttleID", err)
	}

	if _, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", ToLocation: "B",
	}); !errors.Is(err, service.ErrMissingLocationName) {
		t.Errorf("error = %v, want ErrMissingLocationName", err)
	}
}

func TestAcceptLifecycle(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	env.seedCampus(t)
	ctx := context.Background()

	request, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", FromLocation: "Pos P13", ToLocation: "Ged 1 A",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	route, err := env.dispatch.Accept(ctx, request.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if route.RequestID != request.ID {
		t.Errorf("route.RequestID = %s, want %s", route.RequestID, request.ID)
	}
	if got := env.requests.GetRequest(request.ID).Status; got != domain.RequestStatusAccepted {
		t.Errorf("request status = %s, want accepted", got)
	}
	if n := env.active.ActiveCount("shuttle-1"); n != 1 {
		t.Errorf("active routes = %d, want 1", n)
	}

	// Second accept on the same request must fail.
	if _, err := env.dispatch.Accept(ctx, request.ID); !errors.Is(err, service.ErrAlreadyAccepted) {
		t.Errorf("second Accept error = %v, want ErrAlreadyAccepted", err)
	}

	completed, err := env.dispatch.Complete(ctx, "shuttle-1")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !completed {
		t.Error("Complete returned false, want true")
	}
	if got := env.requests.GetRequest(request.ID).Status; got != domain.RequestStatusCompleted {
		t.Errorf("request status after complete = %s, want completed", got)
	}
	if n := env.active.ActiveCount("shuttle-1"); n != 0 {
		t.Errorf("active routes after complete = %d, want 0", n)
	}

	// Completing again is a harmless no-op.
	completed, err = env.dispatch.Complete(ctx, "shuttle-1")
	if err != nil {
		t.Fatalf("second Complete failed: %v", err)
	}
	if completed {
		t.Error("second Complete returned true, want false")
	}

	if got := env.publisher.EventsOfType(broadcast.TypeRouteAccepted); len(got) != 1 {
		t.Errorf("published %d route_accepted events, want 1", len(got))
	}
	if got := env.publisher.EventsOfType(broadcast.TypeRouteCompleted); len(got) != 1 {
		t.Errorf("published %d route_completed events, want 1", len(got))
	}
}

func TestAcceptRetiresPriorActiveRoute(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	env.seedCampus(t)
	ctx := context.Background()

	first, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", FromLocation: "Pos P13", ToLocation: "Ged 1 A",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	second, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", FromLocation: "Ged 1 A", ToLocation: "Pos P13",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := env.dispatch.Accept(ctx, first.ID); err != nil {
		t.Fatalf("Accept first failed: %v", err)
	}
	if _, err := env.dispatch.Accept(ctx, second.ID); err != nil {
		t.Fatalf("Accept second failed: %v", err)
	}

	// The predecessor's request is closed out, never stranded as accepted.
	if got := env.requests.GetRequest(first.ID).Status; got != domain.RequestStatusCompleted {
		t.Errorf("first request status = %s, want completed", got)
	}
	if n := env.active.ActiveCount("shuttle-1"); n != 1 {
		t.Errorf("active routes = %d, want 1", n)
	}
}

func TestAcceptConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	env.seedCampus(t)
	ctx := context.Background()

	request, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", FromLocation: "Pos P13", ToLocation: "Ged 1 A",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	const drivers = 16
	var wins int32
	var g errgroup.Group
	for i := 0; i < drivers; i++ {
		g.Go(func() error {
			_, err := env.dispatch.Accept(ctx, request.ID)
			if err == nil {
				atomic.AddInt32(&wins, 1)
				return nil
			}
			if errors.Is(err, service.ErrAlreadyAccepted) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Accept failed: %v", err)
	}

	if wins != 1 {
		t.Errorf("%d accepts succeeded, want exactly 1", wins)
	}
	if n := env.active.ActiveCount("shuttle-1"); n != 1 {
		t.Errorf("active routes = %d, want 1", n)
	}
}

func TestActiveWithoutRoute(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	status, err := env.dispatch.Active(context.Background(), "shuttle-1")
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if status.Active {
		t.Error("Active = true with no route, want false")
	}
}

func TestActiveDegradesWithoutSamples(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	env.seedCampus(t)
	ctx := context.Background()

	request, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", FromLocation: "Pos P13", ToLocation: "Ged 1 A",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := env.dispatch.Accept(ctx, request.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	status, err := env.dispatch.Active(ctx, "shuttle-1")
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if !status.Active {
		t.Fatal("Active = false, want true")
	}
	if status.ETAMinutes != nil {
		t.Error("ETAMinutes should be nil with no location samples")
	}
	if status.CurrentLocation != nil {
		t.Error("CurrentLocation should be nil with no location samples")
	}
}

func TestActiveComputesETA(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	env.seedCampus(t)
	ctx := context.Background()

	if _, err := env.tracking.RecordSample(ctx, service.RecordSampleRequest{
		ShuttleID: "shuttle-1", Latitude: -7.1633, Longitude: 112.6280, SpeedKmh: 20,
	}); err != nil {
		t.Fatalf("RecordSample failed: %v", err)
	}

	request, err := env.dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", FromLocation: "Pos P13", ToLocation: "ged 1 a",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := env.dispatch.Accept(ctx, request.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	status, err := env.dispatch.Active(ctx, "shuttle-1")
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if !status.Active {
		t.Fatal("Active = false, want true")
	}
	if status.ETAMinutes == nil {
		t.Fatal("ETAMinutes is nil, want a value")
	}
	if *status.ETAMinutes < 0 {
		t.Errorf("ETAMinutes = %d, want >= 0", *status.ETAMinutes)
	}
	if status.CurrentLocation == nil {
		t.Fatal("CurrentLocation is nil, want the latest sample position")
	}
	if status.CurrentLocation.Lat != -7.1633 || status.CurrentLocation.Lng != 112.6280 {
		t.Errorf("CurrentLocation = %+v, want latest sample", *status.CurrentLocation)
	}
}

func TestAcceptUnknownRequest(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	if _, err := env.dispatch.Accept(context.Background(), "no-such-request"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Accept error = %v, want ErrNotFound", err)
	}
}

func TestAcceptLockFastFailsDoubleTap(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	env.seedCampus(t)
	lockStore := NewMockLockStore()
	dispatch := service.NewDispatchService(
		NewMockTxRunner(repository.Stores{
			Shuttles:     env.shuttles,
			Locations:    env.locations,
			Trips:        NewMockTripRepository(),
			Requests:     env.requests,
			ActiveRoutes: env.active,
		}),
		env.requests, env.active, env.waypoints, lockStore, nil, env.tracking, env.publisher,
	)

	ctx := context.Background()
	request, err := dispatch.Submit(ctx, service.SubmitRequest{
		ShuttleID: "shuttle-1", FromLocation: "Pos P13", ToLocation: "Ged 1 A",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Pre-hold the lock: the double-tap path short-circuits before any
	// transaction runs.
	if _, err := lockStore.AcquireAcceptLock(ctx, request.ID, 0); err != nil {
		t.Fatalf("AcquireAcceptLock failed: %v", err)
	}
	if _, err := dispatch.Accept(ctx, request.ID); !errors.Is(err, service.ErrAlreadyAccepted) {
		t.Errorf("Accept error = %v, want ErrAlreadyAccepted", err)
	}
	if got := env.requests.GetRequest(request.ID).Status; got != domain.RequestStatusPending {
		t.Errorf("request status = %s, want still pending", got)
	}
}

func TestWaypointsOrdered(t *testing.T) {
	t.Parallel()

	env := newDispatchEnv()
	env.seedCampus(t)

	waypoints, err := env.dispatch.Waypoints(context.Background())
	if err != nil {
		t.Fatalf("Waypoints failed: %v", err)
	}
	if len(waypoints) != 2 {
		t.Fatalf("got %d waypoints, want 2", len(waypoints))
	}
	if waypoints[0].Name != "Pos P13" || waypoints[1].Name != "Ged 1 A" {
		t.Errorf("waypoints out of point order: %s, %s", waypoints[0].Name, waypoints[1].Name)
	}
}
