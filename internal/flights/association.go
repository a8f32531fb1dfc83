package flights

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"flights_backend/internal/auth"
	"flights_backend/internal/models"
	"flights_backend/internal/store"
)

// AddAirlineToFlight puts an active airline into the caller's draft flight,
// creating the draft on first use.
//
// The draft lookup and creation are not serialized: two concurrent first
// additions by one user can each create a draft. FindDraft then returns the
// oldest one.
func (s *Service) AddAirlineToFlight(ctx context.Context, id auth.Identity, airlineID uint) (*FlightView, error) {
	if !auth.HasRole(id, auth.RoleUser) {
		return nil, ErrForbidden
	}

	var flightID uint
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		airline, err := tx.Airlines.GetByID(ctx, airlineID)
		if err != nil {
			return storeErr(err)
		}
		if !airline.IsActive() {
			return ErrNotFound
		}

		flight, err := tx.Flights.FindDraft(ctx, id.UserID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			owner := id.UserID
			flight = &models.Flight{Status: models.FlightDraft, OwnerID: &owner}
			if err := tx.Flights.Create(ctx, flight); err != nil {
				return storeErr(err)
			}
			logrus.WithFields(logrus.Fields{"flight_id": flight.ID, "owner_id": owner}).Info("draft flight created")
		case err != nil:
			return err
		}
		flightID = flight.ID

		exists, err := tx.Flights.HasAirline(ctx, flight.ID, airline.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrConflict
		}
		return storeErr(tx.Flights.AddAirline(ctx, flight.ID, airline.ID))
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, flightID)
}

// RemoveAirlineFromFlight takes an airline out of the owner's draft. The
// flight is deleted outright when its last airline goes.
func (s *Service) RemoveAirlineFromFlight(ctx context.Context, id auth.Identity, flightID, airlineID uint) (*RemovalResult, error) {
	var removed bool
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		flight, err := tx.Flights.GetByID(ctx, flightID)
		if err != nil {
			return storeErr(err)
		}
		if !ownedBy(id, flight) {
			return ErrForbidden
		}
		if _, err := tx.Airlines.GetByID(ctx, airlineID); err != nil {
			return storeErr(err)
		}
		member, err := tx.Flights.HasAirline(ctx, flightID, airlineID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotFound
		}
		// Formation locks the airline set.
		if flight.Status != models.FlightDraft {
			return ErrInvalidTransition
		}

		if err := tx.Flights.RemoveAirline(ctx, flightID, airlineID); err != nil {
			return storeErr(err)
		}
		left, err := tx.Flights.CountAirlines(ctx, flightID)
		if err != nil {
			return err
		}
		if left > 0 {
			return nil
		}
		if err := tx.Flights.Delete(ctx, flightID); err != nil {
			return storeErr(err)
		}
		removed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if removed {
		logrus.WithField("flight_id", flightID).Info("empty flight deleted")
		return &RemovalResult{FlightRemoved: true, FlightID: flightID}, nil
	}
	v, err := s.view(ctx, flightID)
	if err != nil {
		return nil, err
	}
	return &RemovalResult{FlightID: flightID, Flight: v}, nil
}
