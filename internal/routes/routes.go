package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"flights_backend/internal/auth"
	"flights_backend/internal/controllers"
	"flights_backend/internal/flights"
	"flights_backend/internal/metrics"
	"flights_backend/internal/middleware"
	"flights_backend/internal/session"
	"flights_backend/internal/store"
)

// Deps is everything the router needs to build its controllers.
type Deps struct {
	DB          *gorm.DB
	Store       *store.Store
	Flights     *flights.Service
	Tokens      *auth.TokenManager
	Sessions    session.Store
	ServiceKey  string
	Metrics     *metrics.Registry
	RateLimiter *middleware.RateLimiter
	// AccessLog enables the request log; tests leave it off.
	AccessLog bool
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if d.AccessLog {
		r.Use(ginlog.SetLogger(
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/metrics", "/healthz"}),
		))
	}
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/healthz", controllers.Health(d.DB))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(d.RateLimiter, d.Metrics))
	api.Use(middleware.Identify(d.Tokens, d.Sessions, d.ServiceKey))

	AuthRoutes(api, controllers.NewAuthController(d.Store.Users, d.Tokens, d.Sessions))
	AirlineRoutes(api, controllers.NewAirlineController(d.Flights))
	FlightRoutes(api, controllers.NewFlightController(d.Flights))
	ServiceRoutes(api, controllers.NewServiceController(d.Flights))

	return r
}
