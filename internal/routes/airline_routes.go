package routes

import (
	"github.com/gin-gonic/gin"

	"flights_backend/internal/auth"
	"flights_backend/internal/controllers"
	"flights_backend/internal/middleware"
)

func AirlineRoutes(r *gin.RouterGroup, ac *controllers.AirlineController) {
	airlines := r.Group("/airlines")
	{
		airlines.GET("", ac.Search)
		airlines.GET("/:id", ac.Get)
		airlines.GET("/:id/image", ac.Image)
		airlines.POST("/:id/add_to_flight", middleware.RequireRole(auth.RoleUser), ac.AddToFlight)
	}

	moderated := airlines.Group("")
	moderated.Use(middleware.RequireRole(auth.RoleModerator))
	{
		moderated.POST("", ac.Create)
		moderated.PUT("/:id", ac.Update)
		moderated.PUT("/:id/image", ac.UploadImage)
		moderated.DELETE("/:id", ac.Delete)
	}
}
