package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle/internal/repository"
	"shuttle/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidShuttleID),
		errors.Is(err, service.ErrInvalidRequestID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrMissingLocationName):
		return http.StatusBadRequest

	// Invalid state - Conflict. The caller should re-fetch and decide.
	case errors.Is(err, service.ErrAlreadyAccepted),
		errors.Is(err, service.ErrTripAlreadyOngoing),
		errors.Is(err, service.ErrNoOngoingTrip):
		return http.StatusConflict

	// Storage failures and everything else
	default:
		return http.StatusInternalServerError
	}
}
