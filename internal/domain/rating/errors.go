package rating

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel kinds for rating run errors. The typed errors below unwrap to them.
var (
	ErrMalformedRound  = errors.New("malformed round")
	ErrDegenerateField = errors.New("degenerate field")
	ErrConfiguration   = errors.New("invalid rating configuration")
	ErrEngineSpent     = errors.New("engine already ran")
)

// MalformedRoundError reports input that breaks the placement contract.
type MalformedRoundError struct {
	EventID  string
	Round    int
	PlayerID string
	Reason   string
	Err      error
}

func (e *MalformedRoundError) Error() string {
	msg := fmt.Sprintf("event %s round %d: %v: %s", e.EventID, e.Round, ErrMalformedRound, e.Reason)
	if e.PlayerID != "" {
		msg += " (player " + e.PlayerID + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedRound}
	}
	return []error{ErrMalformedRound, e.Err}
}

// DegenerateFieldError reports a participant whose rating is not positive,
// which the expectation ratio cannot handle.
type DegenerateFieldError struct {
	EventID  string
	Round    int
	PlayerID string
	Rating   float64
}

func (e *DegenerateFieldError) Error() string {
	return fmt.Sprintf("event %s round %d: %v: player %s has rating %v",
		e.EventID, e.Round, ErrDegenerateField, e.PlayerID, e.Rating)
}

func (e *DegenerateFieldError) Unwrap() error { return ErrDegenerateField }

// ConfigurationError reports parameters rejected before any round is processed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ErrorKind returns a short label for err, used for metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedRound):
		return "malformed_round"
	case errors.Is(err, ErrDegenerateField):
		return "degenerate_field"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrEngineSpent):
		return "engine_spent"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
