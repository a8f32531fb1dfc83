package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"flights_backend/internal/flights"
	"flights_backend/internal/middleware"
)

// maxImageSize caps uploaded airline images.
const maxImageSize = 5 << 20

type AirlineController struct {
	svc *flights.Service
}

func NewAirlineController(svc *flights.Service) *AirlineController {
	return &AirlineController{svc: svc}
}

type airlineInput struct {
	Name         string          `json:"name" binding:"required,notblank,max=255"`
	Description  string          `json:"description" binding:"max=4000"`
	IATACode     string          `json:"iata_code" binding:"omitempty,min=2,max=3"`
	Country      string          `json:"country" binding:"max=100"`
	FoundedYear  int             `json:"founded_year" binding:"omitempty,min=1900,max=2100"`
	Headquarters json.RawMessage `json:"headquarters"`
}

func (in airlineInput) toService() flights.AirlineInput {
	return flights.AirlineInput{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		IATACode:     strings.ToUpper(in.IATACode),
		Country:      in.Country,
		FoundedYear:  in.FoundedYear,
		Headquarters: in.Headquarters,
	}
}

// Search lists active airlines; authenticated callers also get their draft.
func (ac *AirlineController) Search(c *gin.Context) {
	p := GetPagination(c)
	page, err := ac.svc.SearchAirlines(c.Request.Context(), middleware.CurrentIdentity(c), flights.AirlineQuery{
		Query: c.Query("query"),
		Page:  p.Page,
		Limit: p.Limit,
	})
	if err != nil {
		respondError(c, "SearchAirlines", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (ac *AirlineController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	airline, err := ac.svc.GetAirline(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetAirline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"airline": airline})
}

func (ac *AirlineController) Image(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	data, contentType, err := ac.svc.AirlineImage(c.Request.Context(), id)
	if err != nil {
		respondError(c, "AirlineImage", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, data)
}

func (ac *AirlineController) Create(c *gin.Context) {
	var input airlineInput
	if !bind(c, &input) {
		return
	}
	airline, err := ac.svc.CreateAirline(c.Request.Context(), middleware.CurrentIdentity(c), input.toService())
	if err != nil {
		respondError(c, "CreateAirline", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"airline": airline})
}

func (ac *AirlineController) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input airlineInput
	if !bind(c, &input) {
		return
	}
	airline, err := ac.svc.UpdateAirline(c.Request.Context(), middleware.CurrentIdentity(c), id, input.toService())
	if err != nil {
		respondError(c, "UpdateAirline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"airline": airline})
}

// UploadImage replaces the airline image with the multipart field "image".
func (ac *AirlineController) UploadImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if header.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	if len(data) > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
		return
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is not an image"})
		return
	}

	if err := ac.svc.SetAirlineImage(c.Request.Context(), middleware.CurrentIdentity(c), id, data, contentType); err != nil {
		respondError(c, "SetAirlineImage", err)
		return
	}
	logrus.WithFields(logrus.Fields{"airline_id": id, "bytes": len(data)}).Info("airline image stored")
	c.JSON(http.StatusOK, gin.H{"message": "image updated"})
}

func (ac *AirlineController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ac.svc.SoftDeleteAirline(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		respondError(c, "SoftDeleteAirline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "airline deleted"})
}

// AddToFlight puts the airline into the caller's draft flight.
func (ac *AirlineController) AddToFlight(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	flight, err := ac.svc.AddAirlineToFlight(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		respondError(c, "AddAirlineToFlight", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"flight": flight})
}
