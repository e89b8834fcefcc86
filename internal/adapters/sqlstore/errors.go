package sqlstore

import "errors"

var (
	// ErrStore wraps every database failure.
	ErrStore = errors.New("placement store")
	// ErrNotFound is returned when a requested event or snapshot does not exist.
	ErrNotFound = errors.New("not found")
)
