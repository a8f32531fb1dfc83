package routes

import (
	"github.com/gin-gonic/gin"

	"flights_backend/internal/auth"
	"flights_backend/internal/controllers"
	"flights_backend/internal/middleware"
)

func AuthRoutes(r *gin.RouterGroup, ac *controllers.AuthController) {
	users := r.Group("/users")
	{
		users.POST("/register", ac.Register)
		users.POST("/login", ac.Login)
	}

	me := users.Group("")
	me.Use(middleware.RequireRole(auth.RoleUser))
	{
		me.POST("/logout", ac.Logout)
		me.GET("/me", ac.Me)
		me.PUT("/me", ac.UpdateMe)
	}
}
