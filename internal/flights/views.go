package flights

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"flights_backend/internal/geo"
	"flights_backend/internal/models"
)

// UserRef is the public face of a flight's owner or moderator.
type UserRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func userRef(id *uint, u *models.User) *UserRef {
	if id == nil {
		return nil
	}
	ref := &UserRef{ID: *id}
	if u != nil {
		ref.Name = u.Name
	}
	return ref
}

type AirlineView struct {
	ID           uint                 `json:"id"`
	Status       models.AirlineStatus `json:"status"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	IATACode     string               `json:"iata_code"`
	Country      string               `json:"country"`
	FoundedYear  int                  `json:"founded_year"`
	Headquarters json.RawMessage      `json:"headquarters,omitempty"`
	ImageURL     string               `json:"image_url"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func NewAirlineView(a *models.Airline) AirlineView {
	hq, err := geo.WKBToGeoJSON(a.Headquarters)
	if err != nil {
		logrus.WithError(err).WithField("airline_id", a.ID).Warn("stored headquarters is not valid WKB")
		hq = nil
	}
	return AirlineView{
		ID:           a.ID,
		Status:       a.Status,
		Name:         a.Name,
		Description:  a.Description,
		IATACode:     a.IATACode,
		Country:      a.Country,
		FoundedYear:  a.FoundedYear,
		Headquarters: hq,
		ImageURL:     fmt.Sprintf("/api/airlines/%d/image", a.ID),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// FlightSummary is a flight without its airlines, as listed by search.
type FlightSummary struct {
	ID              uint                `json:"id"`
	Status          models.FlightStatus `json:"status"`
	StatusName      string              `json:"status_name"`
	Owner           *UserRef            `json:"owner"`
	Moderator       *UserRef            `json:"moderator"`
	DateCreated     time.Time           `json:"date_created"`
	DateFormation   *time.Time          `json:"date_formation"`
	DateComplete    *time.Time          `json:"date_complete"`
	Comment         string              `json:"comment"`
	CalculatedState string              `json:"calculated_state"`
}

func NewFlightSummary(f *models.Flight) FlightSummary {
	return FlightSummary{
		ID:              f.ID,
		Status:          f.Status,
		StatusName:      f.Status.String(),
		Owner:           userRef(f.OwnerID, f.Owner),
		Moderator:       userRef(f.ModeratorID, f.Moderator),
		DateCreated:     f.DateCreated,
		DateFormation:   f.DateFormation,
		DateComplete:    f.DateComplete,
		Comment:         f.Comment,
		CalculatedState: f.CalculatedState,
	}
}

// FlightView is a flight with its airlines.
type FlightView struct {
	FlightSummary
	Airlines []AirlineView `json:"airlines"`
}

func NewFlightView(f *models.Flight) *FlightView {
	airlines := make([]AirlineView, 0, len(f.Airlines))
	for i := range f.Airlines {
		airlines = append(airlines, NewAirlineView(&f.Airlines[i]))
	}
	return &FlightView{FlightSummary: NewFlightSummary(f), Airlines: airlines}
}

// RemovalResult tells apart the two outcomes of removing an airline.
type RemovalResult struct {
	// FlightRemoved is set when the flight lost its last airline and was
	// deleted; Flight is nil then.
	FlightRemoved bool        `json:"flight_removed"`
	FlightID      uint        `json:"flight_id"`
	Flight        *FlightView `json:"flight,omitempty"`
}

// DraftInfo describes the caller's open flight.
type DraftInfo struct {
	FlightID uint  `json:"draft_flight_id"`
	Count    int64 `json:"count"`
}
