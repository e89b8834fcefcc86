package sweep

import (
	"math"
	"sort"
)

// Summary condenses one outcome for a sweep report.
type Summary struct {
	Name         string
	K            float64
	Rounds       int
	Players      int
	Leader       string
	LeaderRating float64
	// Spread is the distance between the highest and lowest current rating.
	Spread   float64
	Complete bool
	Err      error
}

// Summarize reduces an outcome to its report row. A failed job keeps the
// figures of the rounds it committed.
func Summarize(o Outcome) Summary {
	s := Summary{Name: o.Job.Name, K: o.Job.Params.K, Err: o.Err}
	if o.Result == nil {
		return s
	}
	s.Rounds = len(o.Result.Rounds)
	s.Players = len(o.Result.Current)
	s.Complete = o.Result.Complete

	ids := make([]string, 0, len(o.Result.Current))
	for id := range o.Result.Current {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return s
	}
	sort.Strings(ids)

	lo := math.Inf(1)
	s.LeaderRating = math.Inf(-1)
	for _, id := range ids {
		r := o.Result.Current[id]
		if r > s.LeaderRating {
			s.Leader, s.LeaderRating = id, r
		}
		lo = math.Min(lo, r)
	}
	s.Spread = s.LeaderRating - lo
	return s
}
