// Package rating propagates player ratings through an ordered history of
// events and rounds.
package rating

import (
	"math"

	"github.com/google/uuid"
	"github.com/okian/roundelo/internal/domain/scoring"
	"github.com/okian/roundelo/pkg/logger"
)

// Default rating parameters.
const (
	DefaultK             = 32
	DefaultInitialRating = 1000
)

// Params configures the update rule.
type Params struct {
	// K scales the difference between actual and expected results.
	K float64
	// InitialRating seeds every player at round index 0.
	InitialRating float64
	// FieldSize sets the total weight distributed in a round of n players.
	FieldSize scoring.FieldSizeMultiplier
	// Solo decides the actual result of a one-player round.
	Solo scoring.SoloPolicy
}

// DefaultParams returns K=32, initial rating 1000, fsm(n)=n²/10, SoloFull.
func DefaultParams() Params {
	return Params{
		K:             DefaultK,
		InitialRating: DefaultInitialRating,
		FieldSize:     scoring.DefaultFieldSize(),
		Solo:          scoring.SoloFull,
	}
}

// Validate rejects parameters the update rule cannot work with.
func (p Params) Validate() error {
	switch {
	case p.K <= 0 || math.IsNaN(p.K) || math.IsInf(p.K, 0):
		return &ConfigurationError{Field: "k", Reason: "must be a positive number"}
	case p.InitialRating <= 0 || math.IsNaN(p.InitialRating) || math.IsInf(p.InitialRating, 0):
		return &ConfigurationError{Field: "initial_rating", Reason: "must be a positive number"}
	case p.FieldSize == nil:
		return &ConfigurationError{Field: "fsm", Reason: "must be set"}
	case p.Solo != scoring.SoloFull && p.Solo != scoring.SoloZero:
		return &ConfigurationError{Field: "solo_policy", Reason: "unknown policy " + p.Solo.String()}
	}
	return nil
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRoster fixes the player universe instead of deriving it from the
// rounds. Rostered players who never play keep the initial rating; a round
// naming a player outside the roster fails the run.
func WithRoster(players []string) Option {
	return func(e *Engine) {
		e.roster = append([]string(nil), players...)
		e.hasRoster = true
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.runID = id
		}
	}
}

func newRunID() string { return uuid.NewString() }
