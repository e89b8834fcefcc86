package scoring

import (
	"fmt"
	"math"
)

// ExpectedResults splits fsm(n) across participants in proportion to their
// current ratings. Every rating must be positive and finite.
func ExpectedResults(participants []string, ratings map[string]float64, fsm FieldSizeMultiplier) (map[string]float64, error) {
	out := make(map[string]float64, len(participants))
	if len(participants) == 0 {
		return out, nil
	}

	sum := 0.0
	for _, id := range participants {
		r, ok := ratings[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRating, id)
		}
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, &RatingError{PlayerID: id, Rating: r}
		}
		sum += r
	}

	total, err := fieldTotal(fsm, len(participants))
	if err != nil {
		return nil, err
	}
	for _, id := range participants {
		out[id] = total * ratings[id] / sum
	}
	return out, nil
}
