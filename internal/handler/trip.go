package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shuttle/internal/service"
)

// TripHandler handles HTTP requests for the trip lifecycle.
type TripHandler struct {
	trips            *service.TripService
	defaultShuttleID string
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(trips *service.TripService, defaultShuttleID string) *TripHandler {
	return &TripHandler{trips: trips, defaultShuttleID: defaultShuttleID}
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID         string  `json:"id"`
	ShuttleID  string  `json:"shuttle_id"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time,omitempty"`
	DistanceKm float64 `json:"distance_km"`
	Status     string  `json:"status"`
}

// Start handles POST /api/trip/start
func (h *TripHandler) Start(c *gin.Context) {
	shuttleID := c.DefaultQuery("shuttle_id", h.defaultShuttleID)

	trip, err := h.trips.Start(c.Request.Context(), shuttleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TripResponse{
		ID:         trip.ID,
		ShuttleID:  trip.ShuttleID,
		StartTime:  trip.StartTime.Format(time.RFC3339),
		DistanceKm: trip.DistanceKm,
		Status:     string(trip.Status),
	})
}

// End handles POST /api/trip/end
func (h *TripHandler) End(c *gin.Context) {
	shuttleID := c.DefaultQuery("shuttle_id", h.defaultShuttleID)

	trip, err := h.trips.End(c.Request.Context(), shuttleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TripResponse{
		ID:         trip.ID,
		ShuttleID:  trip.ShuttleID,
		StartTime:  trip.StartTime.Format(time.RFC3339),
		EndTime:    trip.EndTime.Format(time.RFC3339),
		DistanceKm: trip.DistanceKm,
		Status:     string(trip.Status),
	})
}
