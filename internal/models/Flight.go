package models

import (
	"fmt"
	"time"
)

// FlightStatus is the lifecycle state of a flight. The numeric values are
// persisted and part of the public API.
type FlightStatus int

const (
	FlightDraft    FlightStatus = 1
	FlightFormed   FlightStatus = 2
	FlightAccepted FlightStatus = 3
	FlightRejected FlightStatus = 4
	FlightDeleted  FlightStatus = 5
)

func (s FlightStatus) String() string {
	switch s {
	case FlightDraft:
		return "draft"
	case FlightFormed:
		return "formed"
	case FlightAccepted:
		return "accepted"
	case FlightRejected:
		return "rejected"
	case FlightDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("FlightStatus(%d)", int(s))
	}
}

// Valid reports whether s is one of the known statuses.
func (s FlightStatus) Valid() bool {
	return s >= FlightDraft && s <= FlightDeleted
}

// Terminal reports whether no transition leaves s.
func (s FlightStatus) Terminal() bool {
	return s == FlightAccepted || s == FlightRejected || s == FlightDeleted
}

// Flight is an aggregation request: a set of airlines collected by its owner
// and reviewed by a moderator.
type Flight struct {
	ID     uint         `gorm:"primaryKey" json:"id"`
	Status FlightStatus `gorm:"not null;default:1;index" json:"status"`

	OwnerID     *uint `gorm:"index" json:"owner_id"`
	Owner       *User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	ModeratorID *uint `json:"moderator_id"`
	Moderator   *User `gorm:"foreignKey:ModeratorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	DateCreated   time.Time  `gorm:"autoCreateTime" json:"date_created"`
	DateFormation *time.Time `gorm:"index" json:"date_formation"`
	DateComplete  *time.Time `json:"date_complete"`

	Comment         string `json:"comment"`
	CalculatedState string `json:"calculated_state"`

	Airlines []Airline `gorm:"many2many:flight_airlines;" json:"airlines,omitempty"`
}
