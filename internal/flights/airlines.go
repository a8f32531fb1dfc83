package flights

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"flights_backend/internal/auth"
	"flights_backend/internal/geo"
	"flights_backend/internal/models"
	"flights_backend/internal/store"
)

// AirlineInput carries the descriptive fields of an airline.
type AirlineInput struct {
	Name         string
	Description  string
	IATACode     string
	Country      string
	FoundedYear  int
	Headquarters json.RawMessage
}

func (in AirlineInput) apply(a *models.Airline) error {
	hq, err := geo.PointToWKB(in.Headquarters)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	a.Name = in.Name
	a.Description = in.Description
	a.IATACode = in.IATACode
	a.Country = in.Country
	a.FoundedYear = in.FoundedYear
	a.Headquarters = hq
	return nil
}

func (s *Service) CreateAirline(ctx context.Context, id auth.Identity, in AirlineInput) (*AirlineView, error) {
	if !auth.HasRole(id, auth.RoleModerator) {
		return nil, ErrForbidden
	}
	airline := &models.Airline{Status: models.AirlineActive}
	if err := in.apply(airline); err != nil {
		return nil, err
	}
	if err := s.store.Airlines.Create(ctx, airline); err != nil {
		return nil, storeErr(err)
	}
	logrus.WithFields(logrus.Fields{"airline_id": airline.ID, "name": airline.Name}).Info("airline created")
	v := NewAirlineView(airline)
	return &v, nil
}

func (s *Service) UpdateAirline(ctx context.Context, id auth.Identity, airlineID uint, in AirlineInput) (*AirlineView, error) {
	if !auth.HasRole(id, auth.RoleModerator) {
		return nil, ErrForbidden
	}
	airline, err := s.store.Airlines.GetByID(ctx, airlineID)
	if err != nil {
		return nil, storeErr(err)
	}
	if err := in.apply(airline); err != nil {
		return nil, err
	}
	if err := s.store.Airlines.Update(ctx, airline); err != nil {
		return nil, storeErr(err)
	}
	v := NewAirlineView(airline)
	return &v, nil
}

func (s *Service) SetAirlineImage(ctx context.Context, id auth.Identity, airlineID uint, data []byte, contentType string) error {
	if !auth.HasRole(id, auth.RoleModerator) {
		return ErrForbidden
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidArgument)
	}
	return storeErr(s.store.Airlines.SetImage(ctx, airlineID, data, contentType))
}

// SoftDeleteAirline hides the airline from search and new additions. Flights
// that already contain it keep it.
func (s *Service) SoftDeleteAirline(ctx context.Context, id auth.Identity, airlineID uint) error {
	if !auth.HasRole(id, auth.RoleModerator) {
		return ErrForbidden
	}
	airline, err := s.store.Airlines.GetByID(ctx, airlineID)
	if err != nil {
		return storeErr(err)
	}
	if !airline.IsActive() {
		return ErrNotFound
	}
	if err := s.store.Airlines.SetStatus(ctx, airlineID, models.AirlineDeleted); err != nil {
		return storeErr(err)
	}
	logrus.WithField("airline_id", airlineID).Info("airline deleted")
	return nil
}

// GetAirline returns an active airline.
func (s *Service) GetAirline(ctx context.Context, airlineID uint) (*AirlineView, error) {
	airline, err := s.store.Airlines.GetByID(ctx, airlineID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !airline.IsActive() {
		return nil, ErrNotFound
	}
	v := NewAirlineView(airline)
	return &v, nil
}

// AirlineImage returns the stored image. Images of deleted airlines stay
// reachable so historical flights still render.
func (s *Service) AirlineImage(ctx context.Context, airlineID uint) ([]byte, string, error) {
	data, contentType, err := s.store.Airlines.GetImage(ctx, airlineID)
	if err != nil {
		return nil, "", storeErr(err)
	}
	if len(data) == 0 {
		return nil, "", ErrNotFound
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// AirlineQuery is a page of the airline catalogue. Page starts at 1.
type AirlineQuery struct {
	Query string
	Page  int
	Limit int
}

type AirlinePage struct {
	Airlines []AirlineView `json:"airlines"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
	// Draft is the caller's open flight, if any.
	Draft *DraftInfo `json:"draft,omitempty"`
}

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// MaxPage is the highest page SearchAirlines serves; larger pages are
	// clamped to it.
	MaxPage = 10000
)

// SearchAirlines lists active airlines whose name contains the query,
// ignoring case.
func (s *Service) SearchAirlines(ctx context.Context, id auth.Identity, q AirlineQuery) (*AirlinePage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}

	found, total, err := s.store.Airlines.Search(ctx, store.AirlineFilter{
		Query:  q.Query,
		Status: models.AirlineActive,
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, err
	}

	page := &AirlinePage{
		Airlines: make([]AirlineView, 0, len(found)),
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
	}
	for i := range found {
		page.Airlines = append(page.Airlines, NewAirlineView(&found[i]))
	}

	if page.Draft, err = s.CurrentDraft(ctx, id); err != nil {
		return nil, err
	}
	return page, nil
}
