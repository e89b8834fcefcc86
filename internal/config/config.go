// Package config defines service configuration and loading.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Failures wrap this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/okian/roundelo/internal/domain/rating"
	"github.com/okian/roundelo/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the sqlite file holding placements and snapshots.
	DBPath string `koanf:"db_path"`

	// KFactor scales every rating update.
	KFactor float64 `koanf:"k_factor"`

	// InitialRating seeds every player.
	InitialRating float64 `koanf:"initial_rating"`

	// FSMCurve names the field size multiplier: quadratic, linear or flat.
	FSMCurve string `koanf:"fsm_curve"`

	// FSMDivisor divides the curve, e.g. quadratic/10 is n²/10.
	FSMDivisor float64 `koanf:"fsm_divisor"`

	// SoloPolicy is full or zero.
	SoloPolicy string `koanf:"solo_policy"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SweepWorkers sets the parameter sweep pool size.
	SweepWorkers int `koanf:"sweep_workers"`

	// SweepKFactors is a comma separated list of K values to sweep.
	SweepKFactors string `koanf:"sweep_k_factors"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		DBPath:              "roundelo.db",
		KFactor:             rating.DefaultK,
		InitialRating:       rating.DefaultInitialRating,
		FSMCurve:            scoring.DefaultCurve,
		FSMDivisor:          scoring.DefaultDivisor,
		SoloPolicy:          scoring.SoloFull.String(),
		MaxLeaderboardLimit: 100,
		SweepWorkers:        runtime.NumCPU(),
		SweepKFactors:       "8,16,24,32,48,64",
	}
}

// Params builds the rating parameters described by the config.
func (c *Config) Params() (rating.Params, error) {
	fsm, err := scoring.CurveByName(c.FSMCurve, c.FSMDivisor)
	if err != nil {
		return rating.Params{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	solo, err := scoring.ParseSoloPolicy(c.SoloPolicy)
	if err != nil {
		return rating.Params{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	p := rating.Params{
		K:             c.KFactor,
		InitialRating: c.InitialRating,
		FieldSize:     fsm,
		Solo:          solo,
	}
	if err := p.Validate(); err != nil {
		return rating.Params{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return p, nil
}

// KFactors parses SweepKFactors.
func (c *Config) KFactors() ([]float64, error) {
	var ks []float64
	for _, part := range strings.Split(c.SweepKFactors, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: sweep_k_factors %q: %w", ErrInvalidConfig, part, err)
		}
		ks = append(ks, k)
	}
	if len(ks) == 0 {
		return nil, fmt.Errorf("%w: sweep_k_factors is empty", ErrInvalidConfig)
	}
	return ks, nil
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	return nil
}
