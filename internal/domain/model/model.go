// Package model contains the tournament history types shared between layers.
package model

import (
	"slices"
	"sort"
	"time"
)

// Player is a competitor. Identity is resolved before data reaches the
// rating core; only ID is used for computation.
type Player struct {
	ID   string
	Name string
}

// TieGroup is a set of players sharing one finishing position.
type TieGroup []string

// Round is one ranked round of an event. Groups are ordered best first.
type Round struct {
	EventID string
	Number  int // 1-based within the event
	Groups  []TieGroup
}

// Participants returns the players of the round in finishing order.
func (r Round) Participants() []string {
	out := make([]string, 0, r.Size())
	for _, g := range r.Groups {
		out = append(out, g...)
	}
	return out
}

// Size returns the number of participants.
func (r Round) Size() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g)
	}
	return n
}

// Event is a tournament made of ordered rounds.
type Event struct {
	ID        string
	Name      string
	StartDate time.Time
	Rounds    []Round
}

// Before reports whether e sorts before o chronologically: start date, then
// round count, then id.
func (e Event) Before(o Event) bool {
	if !e.StartDate.Equal(o.StartDate) {
		return e.StartDate.Before(o.StartDate)
	}
	if len(e.Rounds) != len(o.Rounds) {
		return len(e.Rounds) < len(o.Rounds)
	}
	return e.ID < o.ID
}

// SortEvents returns a chronologically ordered copy of events.
func SortEvents(events []Event) []Event {
	out := slices.Clone(events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// History is the full input of a rating run. Players is optional; when set
// it names players and can act as a roster.
type History struct {
	Players []Player
	Events  []Event
}

// Participants returns every player appearing in any round, sorted by id.
func (h History) Participants() []string {
	seen := make(map[string]struct{})
	for _, e := range h.Events {
		for _, r := range e.Rounds {
			for _, id := range r.Participants() {
				seen[id] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Names maps player ids to display names.
func (h History) Names() map[string]string {
	names := make(map[string]string, len(h.Players))
	for _, p := range h.Players {
		names[p.ID] = p.Name
	}
	return names
}

// RoundCount returns the number of rounds across all events.
func (h History) RoundCount() int {
	n := 0
	for _, e := range h.Events {
		n += len(e.Rounds)
	}
	return n
}
