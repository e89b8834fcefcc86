package model

import (
	"fmt"
	"sort"
)

// Placement is a stored finishing row: a player and their rank in a round.
// Ranks follow standard competition ranking (1, 2, 2, 4).
type Placement struct {
	PlayerID string
	Rank     int
}

// GroupPlacements converts placement rows into ordered tie-groups. Rows may
// arrive in any order. A group of size g at rank r must be followed by rank
// r+g; any other progression is a gap or overlap and is rejected.
func GroupPlacements(ps []Placement) ([]TieGroup, error) {
	if len(ps) == 0 {
		return nil, nil
	}

	rows := make([]Placement, len(ps))
	copy(rows, ps)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Rank != rows[j].Rank {
			return rows[i].Rank < rows[j].Rank
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})

	seen := make(map[string]struct{}, len(rows))
	var groups []TieGroup
	next := 1
	for i := 0; i < len(rows); {
		rank := rows[i].Rank
		if rank != next {
			return nil, fmt.Errorf("%w: expected rank %d, got %d", ErrRankGap, next, rank)
		}
		var g TieGroup
		for ; i < len(rows) && rows[i].Rank == rank; i++ {
			id := rows[i].PlayerID
			if id == "" {
				return nil, fmt.Errorf("%w: rank %d", ErrEmptyPlayerID, rank)
			}
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
			}
			seen[id] = struct{}{}
			g = append(g, id)
		}
		groups = append(groups, g)
		next = rank + len(g)
	}
	return groups, nil
}

// Placements flattens groups back into competition-ranked rows.
func Placements(groups []TieGroup) []Placement {
	var out []Placement
	rank := 1
	for _, g := range groups {
		for _, id := range g {
			out = append(out, Placement{PlayerID: id, Rank: rank})
		}
		rank += len(g)
	}
	return out
}
