package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flights_backend/internal/flights"
	"flights_backend/internal/middleware"
	"flights_backend/internal/models"
)

type FlightController struct {
	svc *flights.Service
}

func NewFlightController(svc *flights.Service) *FlightController {
	return &FlightController{svc: svc}
}

type updateFlightInput struct {
	Comment *string `json:"comment" binding:"omitempty,max=1000"`
}

type decideFlightInput struct {
	Status int `json:"status" binding:"required"`
}

// Search lists submitted flights filtered by status and formation date.
func (fc *FlightController) Search(c *gin.Context) {
	var filter flights.FlightFilter
	if raw := c.Query("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !models.FlightStatus(n).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": gin.H{"status": "must be a flight status between 1 and 5"}})
			return
		}
		status := models.FlightStatus(n)
		filter.Status = &status
	}

	var err error
	if filter.DateStart, err = parseDate(c.Query("date_start"), false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": gin.H{"date_start": err.Error()}})
		return
	}
	if filter.DateEnd, err = parseDate(c.Query("date_end"), true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": gin.H{"date_end": err.Error()}})
		return
	}

	found, err := fc.svc.SearchFlights(c.Request.Context(), middleware.CurrentIdentity(c), filter)
	if err != nil {
		respondError(c, "SearchFlights", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flights": found})
}

func (fc *FlightController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	flight, err := fc.svc.GetFlight(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		respondError(c, "GetFlight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight": flight})
}

func (fc *FlightController) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input updateFlightInput
	if !bind(c, &input) {
		return
	}
	flight, err := fc.svc.UpdateFlight(c.Request.Context(), middleware.CurrentIdentity(c), id, flights.FlightUpdate{Comment: input.Comment})
	if err != nil {
		respondError(c, "UpdateFlight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight": flight})
}

func (fc *FlightController) Form(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	flight, err := fc.svc.FormFlight(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		respondError(c, "FormFlight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight": flight})
}

func (fc *FlightController) Decide(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input decideFlightInput
	if !bind(c, &input) {
		return
	}
	flight, err := fc.svc.DecideFlight(c.Request.Context(), middleware.CurrentIdentity(c), id, models.FlightStatus(input.Status))
	if err != nil {
		respondError(c, "DecideFlight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight": flight})
}

func (fc *FlightController) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := fc.svc.CancelFlight(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		respondError(c, "CancelFlight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "flight deleted"})
}

func (fc *FlightController) RemoveAirline(c *gin.Context) {
	flightID, ok := pathID(c, "id")
	if !ok {
		return
	}
	airlineID, ok := pathID(c, "airline_id")
	if !ok {
		return
	}
	res, err := fc.svc.RemoveAirlineFromFlight(c.Request.Context(), middleware.CurrentIdentity(c), flightID, airlineID)
	if err != nil {
		respondError(c, "RemoveAirlineFromFlight", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
