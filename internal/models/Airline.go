// internal/models/airline.go
package models

import "time"

type AirlineStatus int

const (
	AirlineActive  AirlineStatus = 1
	AirlineDeleted AirlineStatus = 2
)

// Airline is a line item that users collect into their draft flight.
// Deleted airlines keep their rows so existing flights can still show them.
type Airline struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Status      AirlineStatus `gorm:"not null;default:1;index" json:"status"`
	Name        string        `gorm:"not null;index" json:"name"`
	Description string        `json:"description"`
	IATACode    string        `gorm:"size:3" json:"iata_code"`
	Country     string        `json:"country"`
	FoundedYear int           `json:"founded_year"`

	// Headquarters is a point stored as WKB; it is exposed as GeoJSON.
	Headquarters []byte `json:"-"`

	Image            []byte `json:"-"`
	ImageContentType string `json:"-"`
}

func (a *Airline) IsActive() bool { return a.Status == AirlineActive }
