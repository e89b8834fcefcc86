// Package types contains the read-side shapes served by the API.
package types

// Entry is a leaderboard row.
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name,omitempty"`
	Rating   float64 `json:"rating"`
}

// RatingPoint is a player's rating after one processed round.
type RatingPoint struct {
	Index   int     `json:"index"`
	EventID string  `json:"event_id"`
	Round   int     `json:"round"`
	Rating  float64 `json:"rating"`
}

// PlayerHistory is the full rating trajectory of a player.
type PlayerHistory struct {
	PlayerID string        `json:"player_id"`
	Name     string        `json:"name,omitempty"`
	Initial  float64       `json:"initial"`
	Points   []RatingPoint `json:"points"`
}

// Changes counts the rounds in which the rating moved.
func (h PlayerHistory) Changes() int {
	n := 0
	prev := h.Initial
	for _, p := range h.Points {
		if p.Rating != prev {
			n++
		}
		prev = p.Rating
	}
	return n
}

// Peak returns the highest rating reached, the initial rating included.
func (h PlayerHistory) Peak() float64 {
	peak := h.Initial
	for _, p := range h.Points {
		if p.Rating > peak {
			peak = p.Rating
		}
	}
	return peak
}
