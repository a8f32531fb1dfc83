// Package notify tells the external state-calculation service that a flight
// was formed. Delivery is best effort: one attempt, bounded by a timeout,
// never reported back to the request that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"strconv"
)

// Notifier delivers a single "flight formed" event.
type Notifier interface {
	NotifyFlightFormed(ctx context.Context, flightID uint) error
}

// FlightFormed is the payload sent to the state-calculation service.
type FlightFormed struct {
	FlightID uint `json:"flight_id"`
}

func (e FlightFormed) key() []byte {
	return []byte(strconv.FormatUint(uint64(e.FlightID), 10))
}

func (e FlightFormed) encode() ([]byte, error) {
	return json.Marshal(e)
}

// Nop drops every event. It is used when NOTIFY_TRANSPORT=none.
type Nop struct{}

func (Nop) NotifyFlightFormed(context.Context, uint) error { return nil }

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, flightID uint) error

func (f NotifierFunc) NotifyFlightFormed(ctx context.Context, flightID uint) error {
	return f(ctx, flightID)
}
