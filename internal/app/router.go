package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"shuttle/internal/handler"
	"shuttle/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	LocationHandler *handler.LocationHandler
	RouteHandler    *handler.RouteHandler
	TripHandler     *handler.TripHandler
	WaypointHandler *handler.WaypointHandler
	WSHandler       *handler.WSHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
	AllowedOrigins  []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Real-time updates for viewers.
	router.GET("/ws/tracking", deps.WSHandler.Tracking)

	api := router.Group("/api")
	{
		// Tracking routes.
		api.POST("/location", deps.LocationHandler.SubmitLocation)
		shuttle := api.Group("/shuttle")
		{
			shuttle.GET("/current", deps.LocationHandler.CurrentLocation)
			shuttle.GET("/distance", deps.LocationHandler.DistanceStats)
		}

		// Dispatch routes.
		route := api.Group("/route")
		{
			route.POST("/request", deps.RouteHandler.Submit)
			route.GET("/requests", deps.RouteHandler.List)
			route.POST("/accept/:id", deps.RouteHandler.Accept)
			route.GET("/active", deps.RouteHandler.Active)
			route.POST("/complete", deps.RouteHandler.Complete)
		}

		// Trip routes.
		trip := api.Group("/trip")
		{
			trip.POST("/start", deps.TripHandler.Start)
			trip.POST("/end", deps.TripHandler.End)
		}

		// Reference data.
		api.GET("/locations", deps.WaypointHandler.GetAll)
	}

	return router
}
