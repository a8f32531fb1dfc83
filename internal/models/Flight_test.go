package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlightStatus(t *testing.T) {
	assert.Equal(t, "draft", FlightDraft.String())
	assert.Equal(t, "deleted", FlightDeleted.String())
	assert.Equal(t, "FlightStatus(9)", FlightStatus(9).String())

	assert.True(t, FlightFormed.Valid())
	assert.False(t, FlightStatus(0).Valid())
	assert.False(t, FlightStatus(6).Valid())

	assert.False(t, FlightDraft.Terminal())
	assert.False(t, FlightFormed.Terminal())
	assert.True(t, FlightAccepted.Terminal())
	assert.True(t, FlightRejected.Terminal())
	assert.True(t, FlightDeleted.Terminal())
}

func TestAirline_IsActive(t *testing.T) {
	assert.True(t, (&Airline{Status: AirlineActive}).IsActive())
	assert.False(t, (&Airline{Status: AirlineDeleted}).IsActive())
}
