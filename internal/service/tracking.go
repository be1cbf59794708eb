package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"shuttle/internal/broadcast"
	"shuttle/internal/domain"
	"shuttle/internal/geo"
	"shuttle/internal/redis"
	"shuttle/internal/repository"
)

// defaultSpeedWindow is the trailing window over which average speed is
// estimated.
const defaultSpeedWindow = 5 * time.Minute

// EventPublisher publishes state-change events to connected viewers.
type EventPublisher interface {
	Publish(event broadcast.Event)
}

// TrackingService owns location ingestion, distance accrual and speed
// estimation for a shuttle.
type TrackingService struct {
	txRunner      repository.TxRunner
	shuttleRepo   repository.ShuttleRepository
	locationRepo  repository.LocationRepository
	tripRepo      repository.TripRepository
	locationCache redis.LocationCacheInterface
	publisher     EventPublisher
	speedWindow   time.Duration
}

// NewTrackingService creates a new TrackingService. locationCache may be
// nil; the live position cache is best-effort.
func NewTrackingService(
	txRunner repository.TxRunner,
	shuttleRepo repository.ShuttleRepository,
	locationRepo repository.LocationRepository,
	tripRepo repository.TripRepository,
	locationCache redis.LocationCacheInterface,
	publisher EventPublisher,
) *TrackingService {
	return &TrackingService{
		txRunner:      txRunner,
		shuttleRepo:   shuttleRepo,
		locationRepo:  locationRepo,
		tripRepo:      tripRepo,
		locationCache: locationCache,
		publisher:     publisher,
		speedWindow:   defaultSpeedWindow,
	}
}

// RecordSampleRequest contains the parameters for recording a GPS sample.
type RecordSampleRequest struct {
	ShuttleID string
	Latitude  float64
	Longitude float64
	SpeedKmh  float64
	Heading   float64
	Accuracy  float64
	Timestamp time.Time // zero means now
}

// RecordSample appends a GPS sample and accrues the haversine increment
// against the prior sample onto the shuttle total and the ongoing trip,
// all inside one transaction. The broadcast fires only after commit.
// Returns the increment in kilometers, rounded to 3 decimal places.
//
// Samples are never rejected for being physically implausible; there is
// no outlier filtering.
func (s *TrackingService) RecordSample(ctx context.Context, req RecordSampleRequest) (float64, error) {
	if req.ShuttleID == "" {
		return 0, ErrInvalidShuttleID
	}
	if !isValidLatitude(req.Latitude) || !isValidLongitude(req.Longitude) {
		return 0, ErrInvalidLocation
	}

	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	sample := &domain.LocationSample{
		ID:        uuid.New().String(),
		ShuttleID: req.ShuttleID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		SpeedKmh:  req.SpeedKmh,
		Heading:   req.Heading,
		Accuracy:  req.Accuracy,
		Timestamp: timestamp,
	}

	var increment float64
	err := s.txRunner.RunInTx(ctx, func(st repository.Stores) error {
		prior, err := st.Locations.GetLatest(ctx, req.ShuttleID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if prior != nil {
			increment = geo.DistanceKm(
				geo.Point{Lat: prior.Latitude, Lng: prior.Longitude},
				geo.Point{Lat: sample.Latitude, Lng: sample.Longitude},
			)
		}

		if err := st.Locations.Insert(ctx, sample); err != nil {
			return err
		}
		if err := st.Shuttles.AddDistance(ctx, req.ShuttleID, increment); err != nil {
			return err
		}
		if err := st.Shuttles.UpdateStatus(ctx, req.ShuttleID, domain.ShuttleStatusActive); err != nil {
			return err
		}
		// No ongoing trip means the increment still counts toward the
		// shuttle total, just not toward any trip.
		return st.Trips.AddDistanceToOngoing(ctx, req.ShuttleID, increment)
	})
	if err != nil {
		return 0, err
	}

	event := broadcast.NewLocationUpdate(
		req.ShuttleID, req.Latitude, req.Longitude, req.SpeedKmh, req.Heading, timestamp)
	s.publisher.Publish(event)
	s.cachePosition(ctx, req.ShuttleID, event)

	return math.Round(increment*1000) / 1000, nil
}

// cachePosition updates the Redis live position cache. Best-effort: a
// cache failure must not fail the GPS submission.
func (s *TrackingService) cachePosition(ctx context.Context, shuttleID string, event broadcast.Event) {
	if s.locationCache == nil {
		return
	}

	data := event.Data.(broadcast.LocationUpdateData)
	if err := s.locationCache.UpdatePosition(ctx, shuttleID, data.Latitude, data.Longitude); err != nil {
		log.Printf("tracking: position cache update failed: %v", err)
	}

	frame, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.locationCache.SetLastFrame(ctx, shuttleID, frame); err != nil {
		log.Printf("tracking: last frame cache update failed: %v", err)
	}
}

// CurrentLocation returns the most recent sample for a shuttle.
// Fails with repository.ErrNotFound when no sample exists.
func (s *TrackingService) CurrentLocation(ctx context.Context, shuttleID string) (*domain.LocationSample, error) {
	return s.locationRepo.GetLatest(ctx, shuttleID)
}

// AverageSpeed returns the mean speed of samples with speed > 0 inside
// the trailing window. When no qualifying samples exist it returns the
// same default cruising speed used by the ETA fallback, so callers never
// special-case "no data".
func (s *TrackingService) AverageSpeed(ctx context.Context, shuttleID string) (float64, error) {
	since := time.Now().Add(-s.speedWindow)
	avg, ok, err := s.locationRepo.AverageSpeedSince(ctx, shuttleID, since)
	if err != nil {
		return 0, err
	}
	if !ok {
		return geo.DefaultSpeedKmh, nil
	}
	return avg, nil
}

// DistanceStats summarizes accrued distance for a shuttle.
type DistanceStats struct {
	TodayKm       float64
	CurrentTripKm float64
	TotalKm       float64
}

// DistanceStats returns today's summed trip distance, the ongoing trip's
// distance (0 if none) and the shuttle's all-time total.
func (s *TrackingService) DistanceStats(ctx context.Context, shuttleID string) (*DistanceStats, error) {
	today, err := s.tripRepo.SumDistanceForDate(ctx, shuttleID, time.Now())
	if err != nil {
		return nil, err
	}

	var currentTrip float64
	ongoing, err := s.tripRepo.GetOngoing(ctx, shuttleID)
	if err != nil {
		return nil, err
	}
	if ongoing != nil {
		currentTrip = ongoing.DistanceKm
	}

	shuttleRow, err := s.shuttleRepo.GetByID(ctx, shuttleID)
	if err != nil {
		return nil, err
	}

	return &DistanceStats{
		TodayKm:       today,
		CurrentTripKm: currentTrip,
		TotalKm:       shuttleRow.TotalDistanceKm,
	}, nil
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
