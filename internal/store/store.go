package store

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. Inside
// Transaction every repository of the passed Store runs on the same tx.
type Store struct {
	db       *gorm.DB
	Users    UserRepository
	Airlines AirlineRepository
	Flights  FlightRepository
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Airlines: NewAirlineRepository(db),
		Flights:  NewFlightRepository(db),
	}
}

// Transaction runs fn in a database transaction, committing when fn returns nil.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// DB exposes the underlying handle for health checks and migrations.
func (s *Store) DB() *gorm.DB {
	return s.db
}
