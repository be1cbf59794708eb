package tests

import (
	"context"
	"errors"
	"testing"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
	"shuttle/internal/service"
)

// tripEnv bundles a TripService with its mocks.
type tripEnv struct {
	shuttles *MockShuttleRepository
	trips    *MockTripRepository
	service  *service.TripService
}

func newTripEnv() *tripEnv {
	shuttles := NewMockShuttleRepository()
	trips := NewMockTripRepository()

	txRunner := NewMockTxRunner(repository.Stores{
		Shuttles:     shuttles,
		Locations:    NewMockLocationRepository(),
		Trips:        trips,
		Requests:     NewMockRouteRequestRepository(),
		ActiveRoutes: NewMockActiveRouteRepository(),
	})

	return &tripEnv{
		shuttles: shuttles,
		trips:    trips,
		service:  service.NewTripService(txRunner),
	}
}

func TestStartTrip(t *testing.T) {
	t.Parallel()

	env := newTripEnv()
	env.shuttles.AddShuttle(&domain.Shuttle{ID: "shuttle-1"})

	trip, err := env.service.Start(context.Background(), "shuttle-1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if trip.Status != domain.TripStatusOngoing {
		t.Errorf("trip status = %s, want ongoing", trip.Status)
	}
	if trip.ID == "" {
		t.Error("trip ID is empty")
	}
}

func TestStartTripRejectsSecondOngoing(t *testing.T) {
	t.Parallel()

	env := newTripEnv()
	env.shuttles.AddShuttle(&domain.Shuttle{ID: "shuttle-1"})
	ctx := context.Background()

	first, err := env.service.Start(ctx, "shuttle-1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if _, err := env.service.Start(ctx, "shuttle-1"); !errors.Is(err, service.ErrTripAlreadyOngoing) {
		t.Fatalf("second Start error = %v, want ErrTripAlreadyOngoing", err)
	}

	// The first trip is untouched.
	if got := env.trips.GetTrip(first.ID).Status; got != domain.TripStatusOngoing {
		t.Errorf("first trip status = %s, want still ongoing", got)
	}
}

func TestEndTrip(t *testing.T) {
	t.Parallel()

	env := newTripEnv()
	env.shuttles.AddShuttle(&domain.Shuttle{ID: "shuttle-1", Status: domain.ShuttleStatusActive})
	ctx := context.Background()

	started, err := env.service.Start(ctx, "shuttle-1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ended, err := env.service.End(ctx, "shuttle-1")
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if ended.ID != started.ID {
		t.Errorf("ended trip ID = %s, want %s", ended.ID, started.ID)
	}
	if ended.Status != domain.TripStatusCompleted {
		t.Errorf("trip status = %s, want completed", ended.Status)
	}
	if ended.EndTime.IsZero() {
		t.Error("trip EndTime is zero")
	}
	if got := env.shuttles.GetShuttle("shuttle-1").Status; got != domain.ShuttleStatusInactive {
		t.Errorf("shuttle status = %s, want inactive", got)
	}
}

func TestEndTripWithoutOngoing(t *testing.T) {
	t.Parallel()

	env := newTripEnv()
	env.shuttles.AddShuttle(&domain.Shuttle{ID: "shuttle-1"})

	if _, err := env.service.End(context.Background(), "shuttle-1"); !errors.Is(err, service.ErrNoOngoingTrip) {
		t.Errorf("End error = %v, want ErrNoOngoingTrip", err)
	}
}

func TestTripValidation(t *testing.T) {
	t.Parallel()

	env := newTripEnv()
	ctx := context.Background()

	if _, err := env.service.Start(ctx, ""); !errors.Is(err, service.ErrInvalidShuttleID) {
		t.Errorf("Start error = %v, want ErrInvalidShuttleID", err)
	}
	if _, err := env.service.End(ctx, ""); !errors.Is(err, service.ErrInvalidShuttleID) {
		t.Errorf("End error = %v, want ErrInvalidShuttleID", err)
	}
}
