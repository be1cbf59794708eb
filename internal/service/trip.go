package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// TripService owns the trip lifecycle. Distance accrues onto the ongoing
// trip via TrackingService; this service only opens and closes trips.
type TripService struct {
	txRunner repository.TxRunner
}

// NewTripService creates a new TripService.
func NewTripService(txRunner repository.TxRunner) *TripService {
	return &TripService{txRunner: txRunner}
}

// Start opens a new ongoing trip. Starting while a trip is still ongoing
// fails with ErrTripAlreadyOngoing; it never silently closes the prior
// trip.
func (s *TripService) Start(ctx context.Context, shuttleID string) (*domain.Trip, error) {
	if shuttleID == "" {
		return nil, ErrInvalidShuttleID
	}

	trip := &domain.Trip{
		ID:        uuid.New().String(),
		ShuttleID: shuttleID,
		StartTime: time.Now(),
		Status:    domain.TripStatusOngoing,
	}

	err := s.txRunner.RunInTx(ctx, func(st repository.Stores) error {
		ongoing, err := st.Trips.GetOngoing(ctx, shuttleID)
		if err != nil {
			return err
		}
		if ongoing != nil {
			return ErrTripAlreadyOngoing
		}
		return st.Trips.Create(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	return trip, nil
}

// End closes the ongoing trip, freezing its distance, and sets the
// shuttle inactive. Fails with ErrNoOngoingTrip when nothing is ongoing.
func (s *TripService) End(ctx context.Context, shuttleID string) (*domain.Trip, error) {
	if shuttleID == "" {
		return nil, ErrInvalidShuttleID
	}

	var trip *domain.Trip
	err := s.txRunner.RunInTx(ctx, func(st repository.Stores) error {
		var err error
		trip, err = st.Trips.CloseOngoing(ctx, shuttleID, time.Now())
		if err != nil {
			return err
		}
		if trip == nil {
			return ErrNoOngoingTrip
		}
		return st.Shuttles.UpdateStatus(ctx, shuttleID, domain.ShuttleStatusInactive)
	})
	if err != nil {
		return nil, err
	}

	return trip, nil
}
