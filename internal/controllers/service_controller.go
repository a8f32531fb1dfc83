package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flights_backend/internal/flights"
	"flights_backend/internal/middleware"
	"flights_backend/internal/models"
)

// ServiceController serves the trusted state-calculation service.
type ServiceController struct {
	svc *flights.Service
}

func NewServiceController(svc *flights.Service) *ServiceController {
	return &ServiceController{svc: svc}
}

type overwriteFlightInput struct {
	Status          *int    `json:"status"`
	CalculatedState *string `json:"calculated_state" binding:"omitempty,max=4000"`
	Comment         *string `json:"comment" binding:"omitempty,max=1000"`
}

// OverwriteFlight writes the service's result onto the flight.
func (sc *ServiceController) OverwriteFlight(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input overwriteFlightInput
	if !bind(c, &input) {
		return
	}

	in := flights.FlightOverwrite{CalculatedState: input.CalculatedState, Comment: input.Comment}
	if input.Status != nil {
		status := models.FlightStatus(*input.Status)
		in.Status = &status
	}
	flight, err := sc.svc.OverwriteFlight(c.Request.Context(), middleware.CurrentIdentity(c), id, in)
	if err != nil {
		respondError(c, "OverwriteFlight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight": flight})
}
