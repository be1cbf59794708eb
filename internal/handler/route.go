package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shuttle/internal/domain"
	"shuttle/internal/service"
)

// RouteHandler handles HTTP requests for route requests and the active route.
type RouteHandler struct {
	dispatch         *service.DispatchService
	defaultShuttleID string
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(dispatch *service.DispatchService, defaultShuttleID string) *RouteHandler {
	return &RouteHandler{dispatch: dispatch, defaultShuttleID: defaultShuttleID}
}

// SubmitRouteRequest is the HTTP request body for a route request.
type SubmitRouteRequest struct {
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
	RequestedBy  string `json:"requested_by"`
	RequestTime  string `json:"request_time"`
	Note         string `json:"note"`
}

// RouteRequestResponse is the HTTP representation of a route request.
type RouteRequestResponse struct {
	ID           string `json:"id"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
	RequestedBy  string `json:"requested_by"`
	RequestTime  string `json:"request_time"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
}

func toRouteRequestResponse(r *domain.RouteRequest) RouteRequestResponse {
	return RouteRequestResponse{
		ID:           r.ID,
		FromLocation: r.FromLocation,
		ToLocation:   r.ToLocation,
		RequestedBy:  r.RequestedBy,
		RequestTime:  r.RequestTime.Format(time.RFC3339),
		Status:       string(r.Status),
		Note:         r.Note,
	}
}

// Submit handles POST /api/route/request
func (h *RouteHandler) Submit(c *gin.Context) {
	var req SubmitRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var requestTime time.Time
	if req.RequestTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.RequestTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request_time"})
			return
		}
		requestTime = parsed
	}

	request, err := h.dispatch.Submit(c.Request.Context(), service.SubmitRequest{
		ShuttleID:    h.defaultShuttleID,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		RequestedBy:  req.RequestedBy,
		RequestTime:  requestTime,
		Note:         req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRouteRequestResponse(request))
}

// List handles GET /api/route/requests
func (h *RouteHandler) List(c *gin.Context) {
	status := c.DefaultQuery("status", "pending")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	requests, err := h.dispatch.List(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RouteRequestResponse, 0, len(requests))
	for _, r := range requests {
		response = append(response, toRouteRequestResponse(r))
	}

	c.JSON(http.StatusOK, response)
}

// AcceptResponse is the HTTP response for an accepted route request.
type AcceptResponse struct {
	Success      bool   `json:"success"`
	RequestID    string `json:"request_id"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
	StartedAt    string `json:"started_at"`
}

// Accept handles POST /api/route/accept/:id
func (h *RouteHandler) Accept(c *gin.Context) {
	requestID := c.Param("id")

	route, err := h.dispatch.Accept(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AcceptResponse{
		Success:      true,
		RequestID:    route.RequestID,
		FromLocation: route.FromLocation,
		ToLocation:   route.ToLocation,
		StartedAt:    route.StartedAt.Format(time.RFC3339),
	})
}

// ActiveRouteResponse is the HTTP response for the active route query.
type ActiveRouteResponse struct {
	Active          bool            `json:"active"`
	Message         string          `json:"message,omitempty"`
	FromLocation    string          `json:"from_location,omitempty"`
	ToLocation      string          `json:"to_location,omitempty"`
	StartedAt       string          `json:"started_at,omitempty"`
	ETAMinutes      *int            `json:"eta_minutes,omitempty"`
	CurrentLocation *CoordinatePair `json:"current_location,omitempty"`
}

// CoordinatePair is a latitude/longitude pair.
type CoordinatePair struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Active handles GET /api/route/active
func (h *RouteHandler) Active(c *gin.Context) {
	shuttleID := c.DefaultQuery("shuttle_id", h.defaultShuttleID)

	status, err := h.dispatch.Active(c.Request.Context(), shuttleID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !status.Active {
		c.JSON(http.StatusOK, ActiveRouteResponse{Active: false, Message: "No active route"})
		return
	}

	response := ActiveRouteResponse{
		Active:       true,
		FromLocation: status.FromLocation,
		ToLocation:   status.ToLocation,
		StartedAt:    status.StartedAt.Format(time.RFC3339),
		ETAMinutes:   status.ETAMinutes,
	}
	if status.CurrentLocation != nil {
		response.CurrentLocation = &CoordinatePair{
			Lat: status.CurrentLocation.Lat,
			Lng: status.CurrentLocation.Lng,
		}
	}

	c.JSON(http.StatusOK, response)
}

// CompleteResponse is the HTTP response for completing the active route.
type CompleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Complete handles POST /api/route/complete
func (h *RouteHandler) Complete(c *gin.Context) {
	shuttleID := c.DefaultQuery("shuttle_id", h.defaultShuttleID)

	completed, err := h.dispatch.Complete(c.Request.Context(), shuttleID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !completed {
		c.JSON(http.StatusOK, CompleteResponse{Success: true, Message: "No active route to complete"})
		return
	}

	c.JSON(http.StatusOK, CompleteResponse{Success: true, Message: "Route completed"})
}
