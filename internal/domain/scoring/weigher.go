package scoring

import "github.com/okian/roundelo/internal/domain/model"

// Option applies a configuration option to the Weigher.
type Option func(*Weigher)

// WithFieldSize sets the field-size multiplier. Nil is ignored.
func WithFieldSize(fsm FieldSizeMultiplier) Option {
	return func(w *Weigher) {
		if fsm != nil {
			w.fsm = fsm
		}
	}
}

// WithSoloPolicy sets the single-participant policy.
func WithSoloPolicy(p SoloPolicy) Option {
	return func(w *Weigher) {
		w.solo = p
	}
}

// Weigher binds a field-size curve and solo policy so rounds can be
// weighed without threading both through every call.
type Weigher struct {
	fsm  FieldSizeMultiplier
	solo SoloPolicy
}

// NewWeigher creates a Weigher using n²/10 and SoloFull unless overridden.
func NewWeigher(opts ...Option) *Weigher {
	w := &Weigher{
		fsm:  DefaultFieldSize(),
		solo: SoloFull,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Actual returns the actual-result weights of a round.
func (w *Weigher) Actual(groups []model.TieGroup) (map[string]float64, error) {
	return ActualResults(groups, w.fsm, w.solo)
}

// Expected returns the expected-result weights of a round's participants.
func (w *Weigher) Expected(participants []string, ratings map[string]float64) (map[string]float64, error) {
	return ExpectedResults(participants, ratings, w.fsm)
}

// FieldSize returns the configured multiplier.
func (w *Weigher) FieldSize() FieldSizeMultiplier { return w.fsm }
