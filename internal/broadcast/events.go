package broadcast

import "time"

// Wire event types. Field names are stable; viewers depend on them.
const (
	TypeLocationUpdate  = "location_update"
	TypeNewRouteRequest = "new_route_request"
	TypeRouteAccepted   = "route_accepted"
	TypeRouteCompleted  = "route_completed"
)

// LocationUpdateData is the payload of a location_update event.
type LocationUpdateData struct {
	ShuttleID string  `json:"shuttle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp string  `json:"timestamp"`
}

// NewRouteRequestData is the payload of a new_route_request event.
type NewRouteRequestData struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	RequestedBy string `json:"requested_by"`
	Time        string `json:"time"`
}

// RouteAcceptedData is the payload of a route_accepted event.
type RouteAcceptedData struct {
	RequestID string `json:"request_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	StartedAt string `json:"started_at"`
}

// RouteCompletedData is the payload of a route_completed event.
type RouteCompletedData struct {
	ShuttleID string `json:"shuttle_id"`
}

// NewLocationUpdate builds a location_update event.
func NewLocationUpdate(shuttleID string, lat, lng, speed, heading float64, ts time.Time) Event {
	return Event{
		Type: TypeLocationUpdate,
		Data: LocationUpdateData{
			ShuttleID: shuttleID,
			Latitude:  lat,
			Longitude: lng,
			Speed:     speed,
			Heading:   heading,
			Timestamp: ts.Format(time.RFC3339),
		},
	}
}

// NewRouteRequestEvent builds a new_route_request event.
func NewRouteRequestEvent(id, from, to, requestedBy string, ts time.Time) Event {
	return Event{
		Type: TypeNewRouteRequest,
		Data: NewRouteRequestData{
			ID:          id,
			From:        from,
			To:          to,
			RequestedBy: requestedBy,
			Time:        ts.Format(time.RFC3339),
		},
	}
}

// NewRouteAccepted builds a route_accepted event.
func NewRouteAccepted(requestID, from, to string, startedAt time.Time) Event {
	return Event{
		Type: TypeRouteAccepted,
		Data: RouteAcceptedData{
			RequestID: requestID,
			From:      from,
			To:        to,
			StartedAt: startedAt.Format(time.RFC3339),
		},
	}
}

// NewRouteCompleted builds a route_completed event.
func NewRouteCompleted(shuttleID string) Event {
	return Event{
		Type: TypeRouteCompleted,
		Data: RouteCompletedData{ShuttleID: shuttleID},
	}
}
