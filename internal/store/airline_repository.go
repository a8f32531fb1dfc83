package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"flights_backend/internal/models"
)

// AirlineFilter narrows SearchAirlines. An empty Query matches every name.
type AirlineFilter struct {
	Query  string
	Status models.AirlineStatus
	Offset int
	Limit  int
}

type AirlineRepository interface {
	Create(ctx context.Context, airline *models.Airline) error
	GetByID(ctx context.Context, id uint) (*models.Airline, error)
	GetImage(ctx context.Context, id uint) (data []byte, contentType string, err error)
	Update(ctx context.Context, airline *models.Airline) error
	SetImage(ctx context.Context, id uint, data []byte, contentType string) error
	SetStatus(ctx context.Context, id uint, status models.AirlineStatus) error
	Search(ctx context.Context, filter AirlineFilter) ([]models.Airline, int64, error)
}

type gormAirlineRepository struct {
	db *gorm.DB
}

func NewAirlineRepository(db *gorm.DB) AirlineRepository {
	return &gormAirlineRepository{db: db}
}

func (r *gormAirlineRepository) Create(ctx context.Context, airline *models.Airline) error {
	return translate(r.db.WithContext(ctx).Create(airline).Error)
}

// GetByID loads an airline without its image blob.
func (r *gormAirlineRepository) GetByID(ctx context.Context, id uint) (*models.Airline, error) {
	var airline models.Airline
	if err := r.db.WithContext(ctx).Omit("image").First(&airline, id).Error; err != nil {
		return nil, translate(err)
	}
	return &airline, nil
}

func (r *gormAirlineRepository) GetImage(ctx context.Context, id uint) ([]byte, string, error) {
	var airline models.Airline
	err := r.db.WithContext(ctx).
		Select("id", "image", "image_content_type").
		First(&airline, id).Error
	if err != nil {
		return nil, "", translate(err)
	}
	return airline.Image, airline.ImageContentType, nil
}

// Update writes the descriptive fields and status; the image is left alone.
func (r *gormAirlineRepository) Update(ctx context.Context, airline *models.Airline) error {
	res := r.db.WithContext(ctx).Model(airline).
		Select("name", "description", "iata_code", "country", "founded_year", "headquarters", "status", "updated_at").
		Updates(airline)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormAirlineRepository) SetImage(ctx context.Context, id uint, data []byte, contentType string) error {
	res := r.db.WithContext(ctx).Model(&models.Airline{}).
		Where("id = ?", id).
		Updates(map[string]any{"image": data, "image_content_type": contentType})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormAirlineRepository) SetStatus(ctx context.Context, id uint, status models.AirlineStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Airline{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches the name case-insensitively as a substring.
func (r *gormAirlineRepository) Search(ctx context.Context, filter AirlineFilter) ([]models.Airline, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Airline{})
	if filter.Status != 0 {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Query)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	airlines := make([]models.Airline, 0)
	if err := q.Omit("image").Order("id").Find(&airlines).Error; err != nil {
		return nil, 0, translate(err)
	}
	return airlines, total, nil
}

var _ AirlineRepository = (*gormAirlineRepository)(nil)
