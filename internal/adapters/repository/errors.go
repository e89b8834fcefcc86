package repository

import "errors"

// Sentinel kinds for rating store errors.
var (
	ErrNotFound      = errors.New("player not found")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrIndexOutOfRun = errors.New("round index not committed")
	ErrOutOfOrder    = errors.New("round index committed out of order")
	ErrIncomplete    = errors.New("commit does not cover the player universe")
)
