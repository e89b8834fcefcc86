package testevents

import "errors"

var (
	// ErrInvalidConfig is returned for unusable generator settings.
	ErrInvalidConfig = errors.New("invalid test configuration")
	// ErrMismatch is returned when the service disagrees with the local
	// computation.
	ErrMismatch = errors.New("service ratings do not match local computation")
)
