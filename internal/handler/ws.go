package handler

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"shuttle/internal/broadcast"
	"shuttle/internal/redis"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Viewers connect from phones on the campus network; origins vary.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades viewer connections and registers them with the hub.
type WSHandler struct {
	hub              *broadcast.Hub
	locationCache    redis.LocationCacheInterface
	defaultShuttleID string
}

// NewWSHandler creates a new WSHandler. locationCache may be nil; it is
// only used to prime new viewers with the last known position.
func NewWSHandler(hub *broadcast.Hub, locationCache redis.LocationCacheInterface, defaultShuttleID string) *WSHandler {
	return &WSHandler{hub: hub, locationCache: locationCache, defaultShuttleID: defaultShuttleID}
}

// wsSubscriber adapts a websocket connection to broadcast.Subscriber.
// The write mutex serializes hub sends with the priming frame.
type wsSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSubscriber) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Tracking handles GET /ws/tracking
func (h *WSHandler) Tracking(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	sub := &wsSubscriber{conn: conn}
	h.hub.Subscribe(sub)
	defer func() {
		h.hub.Unsubscribe(sub)
		_ = conn.Close()
	}()

	// Prime the new viewer with the last known position so it does not
	// wait for the next GPS sample.
	if h.locationCache != nil {
		frame, err := h.locationCache.GetLastFrame(c.Request.Context(), h.defaultShuttleID)
		if err != nil {
			log.Printf("ws: last frame read failed: %v", err)
		} else if frame != nil {
			if err := sub.Send(frame); err != nil {
				return
			}
		}
	}

	// Read loop: clients send nothing meaningful, but reading detects
	// disconnects and consumes control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
