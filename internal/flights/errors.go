package flights

import (
	"errors"

	"flights_backend/internal/store"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("airline already in flight")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// storeErr maps repository sentinels onto the engine's error kinds.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrDuplicate):
		return ErrConflict
	default:
		return err
	}
}
