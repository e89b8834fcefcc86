package scoring

import (
	"errors"
	"fmt"
)

// Sentinel kinds for scoring errors.
var (
	ErrEmptyGroup        = errors.New("empty tie group")
	ErrDuplicatePlayer   = errors.New("player placed twice in round")
	ErrNegativeFieldSize = errors.New("field size multiplier out of range")
	ErrNonPositiveRating = errors.New("non-positive rating")
	ErrMissingRating     = errors.New("missing rating")
	ErrUnknownCurve      = errors.New("unknown field size curve")
	ErrInvalidDivisor    = errors.New("invalid field size divisor")
	ErrUnknownSoloPolicy = errors.New("unknown solo policy")
)

// FieldSizeError reports an fsm value that is negative, NaN or infinite.
type FieldSizeError struct {
	N     int
	Value float64
}

func (e *FieldSizeError) Error() string {
	return fmt.Sprintf("fsm(%d) = %v: %v", e.N, e.Value, ErrNegativeFieldSize)
}

func (e *FieldSizeError) Unwrap() error { return ErrNegativeFieldSize }

// RatingError identifies the participant whose rating broke the expectation ratio.
type RatingError struct {
	PlayerID string
	Rating   float64
}

func (e *RatingError) Error() string {
	return fmt.Sprintf("player %s has rating %v: %v", e.PlayerID, e.Rating, ErrNonPositiveRating)
}

func (e *RatingError) Unwrap() error { return ErrNonPositiveRating }
