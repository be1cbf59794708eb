package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shuttle/internal/service"
)

// LocationHandler handles HTTP requests for GPS tracking.
type LocationHandler struct {
	tracking         *service.TrackingService
	defaultShuttleID string
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(tracking *service.TrackingService, defaultShuttleID string) *LocationHandler {
	return &LocationHandler{tracking: tracking, defaultShuttleID: defaultShuttleID}
}

// SubmitLocationRequest is the HTTP request body for a GPS sample.
type SubmitLocationRequest struct {
	ShuttleID string  `json:"shuttle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp string  `json:"timestamp"`
}

// SubmitLocationResponse is the HTTP response for a recorded GPS sample.
type SubmitLocationResponse struct {
	Success           bool    `json:"success"`
	Message           string  `json:"message"`
	DistanceIncrement float64 `json:"distance_increment"`
}

// SubmitLocation handles POST /api/location
func (h *LocationHandler) SubmitLocation(c *gin.Context) {
	var req SubmitLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	shuttleID := req.ShuttleID
	if shuttleID == "" {
		shuttleID = h.defaultShuttleID
	}

	var timestamp time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid timestamp"})
			return
		}
		timestamp = parsed
	}

	increment, err := h.tracking.RecordSample(c.Request.Context(), service.RecordSampleRequest{
		ShuttleID: shuttleID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		SpeedKmh:  req.Speed,
		Heading:   req.Heading,
		Accuracy:  req.Accuracy,
		Timestamp: timestamp,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SubmitLocationResponse{
		Success:           true,
		Message:           "Location updated",
		DistanceIncrement: increment,
	})
}

// CurrentLocationResponse is the HTTP response for the latest GPS sample.
type CurrentLocationResponse struct {
	ShuttleID string  `json:"shuttle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp string  `json:"timestamp"`
}

// CurrentLocation handles GET /api/shuttle/current
func (h *LocationHandler) CurrentLocation(c *gin.Context) {
	shuttleID := c.DefaultQuery("shuttle_id", h.defaultShuttleID)

	sample, err := h.tracking.CurrentLocation(c.Request.Context(), shuttleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CurrentLocationResponse{
		ShuttleID: sample.ShuttleID,
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Speed:     sample.SpeedKmh,
		Heading:   sample.Heading,
		Accuracy:  sample.Accuracy,
		Timestamp: sample.Timestamp.Format(time.RFC3339),
	})
}

// DistanceStatsResponse is the HTTP response for distance statistics.
type DistanceStatsResponse struct {
	TodayDistance       float64 `json:"today_distance"`
	CurrentTripDistance float64 `json:"current_trip_distance"`
	TotalDistance       float64 `json:"total_distance"`
}

// DistanceStats handles GET /api/shuttle/distance
func (h *LocationHandler) DistanceStats(c *gin.Context) {
	shuttleID := c.DefaultQuery("shuttle_id", h.defaultShuttleID)

	stats, err := h.tracking.DistanceStats(c.Request.Context(), shuttleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DistanceStatsResponse{
		TodayDistance:       round2(stats.TodayKm),
		CurrentTripDistance: round2(stats.CurrentTripKm),
		TotalDistance:       round2(stats.TotalKm),
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
