package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle/internal/service"
)

// WaypointHandler handles HTTP requests for campus waypoints.
type WaypointHandler struct {
	dispatch *service.DispatchService
}

// NewWaypointHandler creates a new WaypointHandler.
func NewWaypointHandler(dispatch *service.DispatchService) *WaypointHandler {
	return &WaypointHandler{dispatch: dispatch}
}

// WaypointResponse is the HTTP representation of a waypoint.
type WaypointResponse struct {
	Name        string  `json:"location_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description,omitempty"`
}

// GetAll handles GET /api/locations
func (h *WaypointHandler) GetAll(c *gin.Context) {
	waypoints, err := h.dispatch.Waypoints(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]WaypointResponse, 0, len(waypoints))
	for _, wp := range waypoints {
		response = append(response, WaypointResponse{
			Name:        wp.Name,
			Latitude:    wp.Latitude,
			Longitude:   wp.Longitude,
			Description: wp.Description,
		})
	}

	c.JSON(http.StatusOK, response)
}
