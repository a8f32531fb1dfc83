package models

import "time"

// FlightAirline is the join row between a flight and one of its airlines.
// The composite primary key keeps each pair unique.
type FlightAirline struct {
	FlightID  uint      `gorm:"primaryKey" json:"flight_id"`
	AirlineID uint      `gorm:"primaryKey" json:"airline_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (FlightAirline) TableName() string { return "flight_airlines" }
