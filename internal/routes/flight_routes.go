package routes

import (
	"github.com/gin-gonic/gin"

	"flights_backend/internal/auth"
	"flights_backend/internal/controllers"
	"flights_backend/internal/middleware"
)

// FlightRoutes only checks that the caller is signed in; ownership and the
// moderator role are decided per flight by the lifecycle engine.
func FlightRoutes(r *gin.RouterGroup, fc *controllers.FlightController) {
	flights := r.Group("/flights")
	flights.Use(middleware.RequireRole(auth.RoleUser))
	{
		flights.GET("", fc.Search)
		flights.GET("/:id", fc.Get)
		flights.PUT("/:id", fc.Update)
		flights.PUT("/:id/form", fc.Form)
		flights.PUT("/:id/decide", fc.Decide)
		flights.DELETE("/:id", fc.Cancel)
		flights.DELETE("/:id/airlines/:airline_id", fc.RemoveAirline)
	}
}

func ServiceRoutes(r *gin.RouterGroup, sc *controllers.ServiceController) {
	service := r.Group("/service")
	service.Use(middleware.RequireRole(auth.RoleService))
	{
		service.PUT("/flights/:id", sc.OverwriteFlight)
	}
}
