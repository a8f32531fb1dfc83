package flights

import "flights_backend/internal/models"

// transitions lists every allowed status change. Anything absent is rejected.
var transitions = map[models.FlightStatus][]models.FlightStatus{
	models.FlightDraft:  {models.FlightFormed, models.FlightDeleted},
	models.FlightFormed: {models.FlightAccepted, models.FlightRejected},
}

// CanTransition reports whether a flight in status from may move to to.
func CanTransition(from, to models.FlightStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsDecision reports whether s is a valid moderation outcome.
func IsDecision(s models.FlightStatus) bool {
	return CanTransition(models.FlightFormed, s)
}
