package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"flights_backend/internal/models"
)

// FlightFilter narrows Search. Zero values disable a condition.
type FlightFilter struct {
	Statuses        []models.FlightStatus
	ExcludeStatuses []models.FlightStatus
	OwnerID         *uint
	FormedFrom      *time.Time
	FormedTo        *time.Time
}

type FlightRepository interface {
	Create(ctx context.Context, flight *models.Flight) error
	GetByID(ctx context.Context, id uint) (*models.Flight, error)
	// GetDetailed loads the flight with owner, moderator and airlines.
	GetDetailed(ctx context.Context, id uint) (*models.Flight, error)
	FindDraft(ctx context.Context, ownerID uint) (*models.Flight, error)
	// Transition applies updates only if the flight is still in status from.
	// It reports whether a row was changed.
	Transition(ctx context.Context, id uint, from models.FlightStatus, updates map[string]any) (bool, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]any) error
	Delete(ctx context.Context, id uint) error

	HasAirline(ctx context.Context, flightID, airlineID uint) (bool, error)
	AddAirline(ctx context.Context, flightID, airlineID uint) error
	RemoveAirline(ctx context.Context, flightID, airlineID uint) error
	CountAirlines(ctx context.Context, flightID uint) (int64, error)

	Search(ctx context.Context, filter FlightFilter) ([]models.Flight, error)
}

type gormFlightRepository struct {
	db *gorm.DB
}

func NewFlightRepository(db *gorm.DB) FlightRepository {
	return &gormFlightRepository{db: db}
}

func (r *gormFlightRepository) Create(ctx context.Context, flight *models.Flight) error {
	return translate(r.db.WithContext(ctx).Omit("Airlines").Create(flight).Error)
}

func (r *gormFlightRepository) GetByID(ctx context.Context, id uint) (*models.Flight, error) {
	var flight models.Flight
	if err := r.db.WithContext(ctx).First(&flight, id).Error; err != nil {
		return nil, translate(err)
	}
	return &flight, nil
}

func (r *gormFlightRepository) GetDetailed(ctx context.Context, id uint) (*models.Flight, error) {
	var flight models.Flight
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Moderator").
		Preload("Airlines", func(db *gorm.DB) *gorm.DB {
			return db.Omit("image").Order("airlines.id")
		}).
		First(&flight, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &flight, nil
}

// FindDraft returns the first draft flight of the owner. More than one can
// exist when two first additions race; the oldest wins.
func (r *gormFlightRepository) FindDraft(ctx context.Context, ownerID uint) (*models.Flight, error) {
	var flight models.Flight
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, models.FlightDraft).
		Order("id").
		First(&flight).Error
	if err != nil {
		return nil, translate(err)
	}
	return &flight, nil
}

func (r *gormFlightRepository) Transition(ctx context.Context, id uint, from models.FlightStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Flight{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormFlightRepository) UpdateFields(ctx context.Context, id uint, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Flight{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the flight row together with any remaining join rows.
func (r *gormFlightRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("flight_id = ?", id).Delete(&models.FlightAirline{}).Error; err != nil {
		return translate(err)
	}
	res := db.Delete(&models.Flight{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormFlightRepository) HasAirline(ctx context.Context, flightID, airlineID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FlightAirline{}).
		Where("flight_id = ? AND airline_id = ?", flightID, airlineID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *gormFlightRepository) AddAirline(ctx context.Context, flightID, airlineID uint) error {
	link := models.FlightAirline{FlightID: flightID, AirlineID: airlineID}
	return translate(r.db.WithContext(ctx).Create(&link).Error)
}

func (r *gormFlightRepository) RemoveAirline(ctx context.Context, flightID, airlineID uint) error {
	res := r.db.WithContext(ctx).
		Where("flight_id = ? AND airline_id = ?", flightID, airlineID).
		Delete(&models.FlightAirline{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormFlightRepository) CountAirlines(ctx context.Context, flightID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FlightAirline{}).
		Where("flight_id = ?", flightID).
		Count(&count).Error
	return count, translate(err)
}

func (r *gormFlightRepository) Search(ctx context.Context, filter FlightFilter) ([]models.Flight, error) {
	q := r.db.WithContext(ctx).Model(&models.Flight{}).
		Preload("Owner").
		Preload("Moderator")

	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if len(filter.ExcludeStatuses) > 0 {
		q = q.Where("status NOT IN ?", filter.ExcludeStatuses)
	}
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.FormedFrom != nil {
		q = q.Where("date_formation >= ?", *filter.FormedFrom)
	}
	if filter.FormedTo != nil {
		q = q.Where("date_formation <= ?", *filter.FormedTo)
	}

	flights := make([]models.Flight, 0)
	if err := q.Order("date_formation DESC").Order("id DESC").Find(&flights).Error; err != nil {
		return nil, translate(err)
	}
	return flights, nil
}

var _ FlightRepository = (*gormFlightRepository)(nil)
