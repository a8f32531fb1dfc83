// Package flights implements the flight lifecycle: collecting airlines into
// a user's draft flight, formation, moderation, and cancellation.
package flights

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"flights_backend/internal/auth"
	"flights_backend/internal/metrics"
	"flights_backend/internal/models"
	"flights_backend/internal/store"
)

// FormedHook is told about every flight that reached the formed status.
// It must not block.
type FormedHook interface {
	FlightFormed(flightID uint)
}

type Service struct {
	store   *store.Store
	hook    FormedHook
	metrics *metrics.Registry
	now     func() time.Time
}

func NewService(st *store.Store, hook FormedHook, m *metrics.Registry) *Service {
	return &Service{store: st, hook: hook, metrics: m, now: time.Now}
}

// ownedBy reports whether the identity is the flight's owner. A flight
// without an owner is owned by nobody.
func ownedBy(id auth.Identity, f *models.Flight) bool {
	return f.OwnerID != nil && auth.Authorize(id, auth.RoleUser, f.OwnerID)
}

// ownerOrModerator gates reads and comment edits.
func ownerOrModerator(id auth.Identity, f *models.Flight) bool {
	return ownedBy(id, f) || auth.HasRole(id, auth.RoleModerator)
}

// transition moves the flight from its current status to to with a single
// conditional update. updates holds the columns written together with the
// status.
func (s *Service) transition(ctx context.Context, f *models.Flight, to models.FlightStatus, updates map[string]any) error {
	if f.Status.Terminal() || !CanTransition(f.Status, to) {
		return ErrInvalidTransition
	}
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	applied, err := s.store.Flights.Transition(ctx, f.ID, f.Status, updates)
	if err != nil {
		return storeErr(err)
	}
	if !applied {
		// Lost a race: the row was deleted or moved on since we read it.
		if _, err := s.store.Flights.GetByID(ctx, f.ID); err != nil {
			return storeErr(err)
		}
		return ErrInvalidTransition
	}

	s.metrics.ObserveTransition(f.Status, to)
	logrus.WithFields(logrus.Fields{
		"flight_id": f.ID,
		"from":      f.Status.String(),
		"to":        to.String(),
	}).Info("flight status changed")
	return nil
}

func (s *Service) loadFlight(ctx context.Context, flightID uint) (*models.Flight, error) {
	f, err := s.store.Flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, storeErr(err)
	}
	return f, nil
}

func (s *Service) view(ctx context.Context, flightID uint) (*FlightView, error) {
	f, err := s.store.Flights.GetDetailed(ctx, flightID)
	if err != nil {
		return nil, storeErr(err)
	}
	return NewFlightView(f), nil
}

// FormFlight submits the owner's draft for moderation and notifies the
// state-calculation service once the change is stored.
func (s *Service) FormFlight(ctx context.Context, id auth.Identity, flightID uint) (*FlightView, error) {
	f, err := s.loadFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if !ownedBy(id, f) {
		return nil, ErrForbidden
	}
	err = s.transition(ctx, f, models.FlightFormed, map[string]any{
		"date_formation": s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if s.hook != nil {
		s.hook.FlightFormed(f.ID)
	}
	return s.view(ctx, f.ID)
}

// DecideFlight records a moderator's verdict on a formed flight.
func (s *Service) DecideFlight(ctx context.Context, id auth.Identity, flightID uint, target models.FlightStatus) (*FlightView, error) {
	if !auth.HasRole(id, auth.RoleModerator) {
		return nil, ErrForbidden
	}
	f, err := s.loadFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if !IsDecision(target) {
		return nil, ErrInvalidTransition
	}
	err = s.transition(ctx, f, target, map[string]any{
		"moderator_id":  id.UserID,
		"date_complete": s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, f.ID)
}

// CancelFlight soft-deletes the owner's draft.
func (s *Service) CancelFlight(ctx context.Context, id auth.Identity, flightID uint) error {
	f, err := s.loadFlight(ctx, flightID)
	if err != nil {
		return err
	}
	if !ownedBy(id, f) {
		return ErrForbidden
	}
	return s.transition(ctx, f, models.FlightDeleted, nil)
}

func (s *Service) GetFlight(ctx context.Context, id auth.Identity, flightID uint) (*FlightView, error) {
	f, err := s.store.Flights.GetDetailed(ctx, flightID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ownerOrModerator(id, f) {
		return nil, ErrForbidden
	}
	return NewFlightView(f), nil
}

// FlightUpdate holds the fields an owner or moderator may edit directly.
type FlightUpdate struct {
	Comment *string
}

func (s *Service) UpdateFlight(ctx context.Context, id auth.Identity, flightID uint, in FlightUpdate) (*FlightView, error) {
	f, err := s.loadFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if !ownerOrModerator(id, f) {
		return nil, ErrForbidden
	}
	if in.Comment != nil {
		if err := s.store.Flights.UpdateFields(ctx, f.ID, map[string]any{"comment": *in.Comment}); err != nil {
			return nil, storeErr(err)
		}
	}
	return s.view(ctx, f.ID)
}

// FlightOverwrite is what the trusted state-calculation service may write.
// Nil fields are left unchanged.
type FlightOverwrite struct {
	Status          *models.FlightStatus
	CalculatedState *string
	Comment         *string
}

// OverwriteFlight writes fields directly, bypassing the transition table.
// Only the trusted service may call it.
func (s *Service) OverwriteFlight(ctx context.Context, id auth.Identity, flightID uint, in FlightOverwrite) (*FlightView, error) {
	if !auth.HasRole(id, auth.RoleService) {
		return nil, ErrForbidden
	}
	f, err := s.loadFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, ErrInvalidArgument
		}
		updates["status"] = *in.Status
	}
	if in.CalculatedState != nil {
		updates["calculated_state"] = *in.CalculatedState
	}
	if in.Comment != nil {
		updates["comment"] = *in.Comment
	}
	if len(updates) > 0 {
		if err := s.store.Flights.UpdateFields(ctx, f.ID, updates); err != nil {
			return nil, storeErr(err)
		}
		logrus.WithFields(logrus.Fields{"flight_id": f.ID, "fields": len(updates)}).Info("flight overwritten by state service")
	}
	return s.view(ctx, f.ID)
}

// CurrentDraft returns the caller's open flight, or nil when there is none
// or the caller is not a user.
func (s *Service) CurrentDraft(ctx context.Context, id auth.Identity) (*DraftInfo, error) {
	if !id.IsUser() {
		return nil, nil
	}
	f, err := s.store.Flights.FindDraft(ctx, id.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	count, err := s.store.Flights.CountAirlines(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	return &DraftInfo{FlightID: f.ID, Count: count}, nil
}

// FlightFilter narrows SearchFlights. Nil fields are ignored.
type FlightFilter struct {
	Status    *models.FlightStatus
	DateStart *time.Time
	DateEnd   *time.Time
}

// SearchFlights lists submitted flights. Drafts are never listed and
// cancelled flights only when asked for by status; non-moderators only see
// their own. Timestamps are stored in UTC, so the date bounds are compared
// in UTC too.
func (s *Service) SearchFlights(ctx context.Context, id auth.Identity, filter FlightFilter) ([]FlightSummary, error) {
	if !auth.HasRole(id, auth.RoleUser) {
		return nil, ErrForbidden
	}
	q := store.FlightFilter{
		ExcludeStatuses: []models.FlightStatus{models.FlightDraft, models.FlightDeleted},
		FormedFrom:      utc(filter.DateStart),
		FormedTo:        utc(filter.DateEnd),
	}
	if filter.Status != nil {
		q.Statuses = []models.FlightStatus{*filter.Status}
		if *filter.Status == models.FlightDeleted {
			q.ExcludeStatuses = []models.FlightStatus{models.FlightDraft}
		}
	}
	if !auth.HasRole(id, auth.RoleModerator) {
		owner := id.UserID
		q.OwnerID = &owner
	}

	found, err := s.store.Flights.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]FlightSummary, 0, len(found))
	for i := range found {
		out = append(out, NewFlightSummary(&found[i]))
	}
	return out, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
