package scoring

import (
	"fmt"

	"github.com/okian/roundelo/internal/domain/model"
)

// ActualResults weighs a round's ranked tie-groups. Slot k of n gets a share
// of the linear ramp n-1-k, scaled so the slots sum to fsm(n); every tied
// player then receives the mean of the slots their group spans.
func ActualResults(groups []model.TieGroup, fsm FieldSizeMultiplier, solo SoloPolicy) (map[string]float64, error) {
	n := 0
	for i, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("%w: position %d", ErrEmptyGroup, i+1)
		}
		n += len(g)
	}
	out := make(map[string]float64, n)
	if n == 0 {
		return out, nil
	}

	total, err := fieldTotal(fsm, n)
	if err != nil {
		return nil, err
	}

	if n == 1 {
		w := 0.0
		if solo == SoloFull {
			w = total
		}
		out[groups[0][0]] = w
		return out, nil
	}

	scale := total / (float64(n) * float64(n-1) / 2)
	slot := 0
	for _, g := range groups {
		sum := 0.0
		for k := slot; k < slot+len(g); k++ {
			sum += float64(n-1-k) * scale
		}
		avg := sum / float64(len(g))
		for _, id := range g {
			if _, dup := out[id]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
			}
			out[id] = avg
		}
		slot += len(g)
	}
	return out, nil
}
