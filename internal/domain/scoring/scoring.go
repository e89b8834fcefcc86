// Package scoring converts a round's finishing order and the field's ratings
// into the actual and expected result weights used by the rating update.
package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Default field-size configuration.
const (
	DefaultCurve   = "quadratic"
	DefaultDivisor = 10
)

// FieldSizeMultiplier maps a round's participant count to the total result
// weight distributed in that round.
type FieldSizeMultiplier func(n int) float64

// Quadratic returns fsm(n) = n²/divisor.
func Quadratic(divisor float64) FieldSizeMultiplier {
	return func(n int) float64 { return float64(n) * float64(n) / divisor }
}

// Linear returns fsm(n) = n/divisor.
func Linear(divisor float64) FieldSizeMultiplier {
	return func(n int) float64 { return float64(n) / divisor }
}

// Flat returns fsm(n) = 1/divisor regardless of field size.
func Flat(divisor float64) FieldSizeMultiplier {
	return func(int) float64 { return 1 / divisor }
}

// DefaultFieldSize is n²/10.
func DefaultFieldSize() FieldSizeMultiplier { return Quadratic(DefaultDivisor) }

// CurveByName resolves a configured curve name.
func CurveByName(name string, divisor float64) (FieldSizeMultiplier, error) {
	if divisor <= 0 || math.IsNaN(divisor) || math.IsInf(divisor, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDivisor, divisor)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "quadratic":
		return Quadratic(divisor), nil
	case "linear":
		return Linear(divisor), nil
	case "flat":
		return Flat(divisor), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, name)
	}
}

// SoloPolicy decides the actual result of the only player in a round, where
// the linear ramp has no slots to spread over.
type SoloPolicy int

const (
	// SoloFull awards fsm(1), matching the expectation so the rating holds.
	SoloFull SoloPolicy = iota
	// SoloZero awards nothing.
	SoloZero
)

func (p SoloPolicy) String() string {
	switch p {
	case SoloFull:
		return "full"
	case SoloZero:
		return "zero"
	default:
		return fmt.Sprintf("SoloPolicy(%d)", int(p))
	}
}

// ParseSoloPolicy accepts "full" or "zero".
func ParseSoloPolicy(s string) (SoloPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return SoloFull, nil
	case "zero":
		return SoloZero, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSoloPolicy, s)
	}
}

// fieldTotal evaluates fsm and rejects values that cannot be distributed.
func fieldTotal(fsm FieldSizeMultiplier, n int) (float64, error) {
	total := fsm(n)
	if total < 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, &FieldSizeError{N: n, Value: total}
	}
	return total, nil
}

// CheckFieldSize evaluates fsm for a field of n players.
func CheckFieldSize(fsm FieldSizeMultiplier, n int) error {
	_, err := fieldTotal(fsm, n)
	return err
}
