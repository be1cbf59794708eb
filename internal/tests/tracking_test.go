package tests

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"shuttle/internal/broadcast"
	"shuttle/internal/domain"
	"shuttle/internal/repository"
	"shuttle/internal/service"
)

// trackingEnv bundles a TrackingService with its mocks.
type trackingEnv struct {
	shuttles  *MockShuttleRepository
	locations *MockLocationRepository
	trips     *MockTripRepository
	publisher *MockPublisher
	tracking  *service.TrackingService
}

func newTrackingEnv() *trackingEnv {
	shuttles := NewMockShuttleRepository()
	locations := NewMockLocationRepository()
	trips := NewMockTripRepository()
	publisher := NewMockPublisher()

	txRunner := NewMockTxRunner(repository.Stores{
		Shuttles:     shuttles,
		Locations:    locations,
		Trips:        trips,
		Requests:     NewMockRouteRequestRepository(),
		ActiveRoutes: NewMockActiveRouteRepository(),
	})

	return &trackingEnv{
		shuttles:  shuttles,
		locations: locations,
		trips:     trips,
		publisher: publisher,
		tracking:  service.NewTrackingService(txRunner, shuttles, locations, trips, nil, publisher),
	}
}

func TestRecordSampleAccruesDistance(t *testing.T) {
	t.Parallel()

	env := newTrackingEnv()
	env.shuttles.AddShuttle(&domain.Shuttle{ID: "shuttle-1", Name: "Campus Shuttle"})
	env.trips.AddTrip(&domain.Trip{
		ID:        "trip-1",
		ShuttleID: "shuttle-1",
		StartTime: time.Now(),
		Status:    domain.TripStatusOngoing,
	})

	ctx := context.Background()
	points := []struct {
		lat, lng float64
	}{
		{-7.1633, 112.6280},
		{-7.1650, 112.6285},
		{-7.1660, 112.6290},
	}

	var total float64
	for i, p := range points {
		inc, err := env.tracking.RecordSample(ctx, service.RecordSampleRequest{
			ShuttleID: "shuttle-1",
			Latitude:  p.lat,
			Longitude: p.lng,
			SpeedKmh:  20,
		})
		if err != nil {
			t.Fatalf("RecordSample(%d) failed: %v", i, err)
		}
		if i == 0 && inc != 0 {
			t.Errorf("first sample should have zero increment, got %f", inc)
		}
		if i > 0 && inc <= 0 {
			t.Errorf("sample %d should have positive increment, got %f", i, inc)
		}
		total += inc
	}

	shuttle := env.shuttles.GetShuttle("shuttle-1")
	if math.Abs(shuttle.TotalDistanceKm-total) > 0.001 {
		t.Errorf("shuttle total = %f, want ~%f", shuttle.TotalDistanceKm, total)
	}
	if shuttle.Status != domain.ShuttleStatusActive {
		t.Errorf("shuttle status = %s, want active", shuttle.Status)
	}

	trip := env.trips.GetTrip("trip-1")
	if math.Abs(trip.DistanceKm-total) > 0.001 {
		t.Errorf("trip distance = %f, want ~%f", trip.DistanceKm, total)
	}

	events := env.publisher.EventsOfType(broadcast.TypeLocationUpdate)
	if len(events) != 3 {
		t.Errorf("published %d location_update events, want 3", len(events))
	}
}

func TestRecordSampleWithoutTripStillCountsTotal(t *testing.T) {
	t.Parallel()

	env := newTrackingEnv()
	env.shuttles.AddShuttle(&domain.Shuttle{ID: "shuttle-1"})

	ctx := context.Background()
	if _, err := env.tracking.RecordSample(ctx, service.RecordSampleRequest{
		ShuttleID: "shuttle-1", Latitude: -7.1633, Longitude: 112.6280,
	}); err != nil {
		t.Fatalf("RecordSample failed: %v", err)
	}
	inc, err := env.tracking.RecordSample(ctx, service.RecordSampleRequest{
		ShuttleID: "shuttle-1", Latitude: -7.1650, Longitude: 112.6285,
	})
	if err != nil {
		t.Fatalf("RecordSample failed: %v", err)
	}

	if inc <= 0 {
		t.Fatalf("increment = %f, want > 0", inc)
	}
	shuttle := env.shuttles.GetShuttle("shuttle-1")
	if shuttle.TotalDistanceKm <= 0 {
		t.Errorf("shuttle total = %f, want > 0", shuttle.TotalDistanceKm)
	}
}

func TestRecordSampleValidation(t *testing.T) {
	t.Parallel()

	env := newTrackingEnv()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     service.RecordSampleRequest
		wantErr error
	}{
		{
			name:    "missing shuttle id",
			req:     service.RecordSampleRequest{Latitude: 0, Longitude: 0},
			wantErr: service.ErrInvalidShuttleID,
		},
		{
			name:    "latitude out of range",
			req:     service.RecordSampleRequest{ShuttleID: "shuttle-1", Latitude: 95, Longitude: 0},
			wantErr: service.ErrInvalidLocation,
		},
		{
			name:    "longitude out of range",
			req:     service.RecordSampleRequest{ShuttleID: "shuttle-1", Latitude: 0, Longitude: -190},
			wantErr: service.ErrInvalidLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.tracking.RecordSample(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("RecordSample error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if n := env.locations.SampleCount(); n != 0 {
		t.Errorf("stored %d samples from rejected requests, want 0", n)
	}
}

func TestCurrentLocationNoSamples(t *testing.T) {
	t.Parallel()

	env := newTrackingEnv()
	_, err := env.tracking.CurrentLocation(context.Background(), "shuttle-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("CurrentLocation error = %v, want ErrNotFound", err)
	}
}

func TestAverageSpeedExcludesStationarySamples(t *testing.T) {
	t.Parallel()

	env := newTrackingEnv()
	env.shuttles.AddShuttle(&domain.Shuttle{ID: "shuttle-1"})

	ctx := context.Background()
	for _, speed := range []float64{20, 30, 0, 0} {
		if _, err := env.tracking.RecordSample(ctx, service.RecordSampleRequest{
			ShuttleID: "shuttle-1", Latitude: -7.1633, Longitude: 112.6280, SpeedKmh: speed,
		}); err != nil {
			t.Fatalf("RecordSample failed: %v", err)
		}
	}

	avg, err := env.tracking.AverageSpeed(ctx, "shuttle-1")
	if err != nil {
		t.Fatalf("AverageSpeed failed: %v", err)
	}
	if avg != 25 {
		t.Errorf("AverageSpeed = %f, want 25 (mean of 20 and 30)", avg)
	}
}

func TestAverageSpeedFallsBackToDefault(t *testing.T) {
	t.Parallel()

	env := newTrackingEnv()
	avg, err := env.tracking.AverageSpeed(context.Background(), "shuttle-1")
	if err != nil {
		t.Fatalf("AverageSpeed failed: %v", err)
	}
	if avg != 25 {
		t.Errorf("AverageSpeed with no samples = %f, want default 25", avg)
	}
}

func TestDistanceStats(t *testing.T) {
	t.Parallel()

	env := newTrackingEnv()
	env.shuttles.AddShuttle(&domain.Shuttle{ID: "shuttle-1", TotalDistanceKm: 120.5})

	now := time.Now()
	env.trips.AddTrip(&domain.Trip{
		ID: "trip-done", ShuttleID: "shuttle-1",
		StartTime: now.Add(-30 * time.Minute), EndTime: now.Add(-20 * time.Minute),
		DistanceKm: 4.2, Status: domain.TripStatusCompleted,
	})
	env.trips.AddTrip(&domain.Trip{
		ID: "trip-now", ShuttleID: "shuttle-1",
		StartTime: now.Add(-10 * time.Minute),
		DistanceKm: 1.3, Status: domain.TripStatusOngoing,
	})

	stats, err := env.tracking.DistanceStats(context.Background(), "shuttle-1")
	if err != nil {
		t.Fatalf("DistanceStats failed: %v", err)
	}

	if math.Abs(stats.TodayKm-5.5) > 0.001 {
		t.Errorf("TodayKm = %f, want 5.5", stats.TodayKm)
	}
	if math.Abs(stats.CurrentTripKm-1.3) > 0.001 {
		t.Errorf("CurrentTripKm = %f, want 1.3", stats.CurrentTripKm)
	}
	if math.Abs(stats.TotalKm-120.5) > 0.001 {
		t.Errorf("TotalKm = %f, want 120.5", stats.TotalKm)
	}
}
