// Package ingest reads tournament results files and hands the decoded events
// to a placement store.
package ingest

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/roundelo/internal/domain/model"
)

// DateLayout is the start_date format of a results file.
const DateLayout = "2006-01-02"

// File is the YAML layout of a results file.
type File struct {
	Events []EventDoc `yaml:"events"`
}

// EventDoc is one event of a results file.
type EventDoc struct {
	ID        string      `yaml:"id"`
	Name      string      `yaml:"name"`
	StartDate string      `yaml:"start_date"`
	Players   []PlayerDoc `yaml:"players"`
	Rounds    []RoundDoc  `yaml:"rounds"`
}

// PlayerDoc names a player.
type PlayerDoc struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// RoundDoc lists the placements of one round.
type RoundDoc struct {
	Number     int            `yaml:"number"`
	Placements []PlacementDoc `yaml:"placements"`
}

// PlacementDoc is a competition-ranked finishing row.
type PlacementDoc struct {
	Player string `yaml:"player"`
	Rank   int    `yaml:"rank"`
}

// Decode parses a results file. Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("%w: decode: %w", ErrImport, err)
	}
	return &f, nil
}

// Encode writes f in the layout Decode reads.
func Encode(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("%w: encode: %w", ErrImport, err)
	}
	return enc.Close()
}

// ReadFile opens and decodes a results file.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImport, err)
	}
	defer fh.Close()
	return Decode(fh)
}

// Event converts the document into a model event with grouped rounds.
func (d EventDoc) Event() (model.Event, error) {
	if d.ID == "" {
		return model.Event{}, fmt.Errorf("%w: event without id", ErrImport)
	}
	start, err := time.Parse(DateLayout, d.StartDate)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: event %s: start_date %q: %w", ErrImport, d.ID, d.StartDate, err)
	}

	ev := model.Event{ID: d.ID, Name: d.Name, StartDate: start}
	// Distinct numbers within 1..len(d.Rounds) run without gaps.
	numbers := make(map[int]struct{}, len(d.Rounds))
	for _, rd := range d.Rounds {
		if rd.Number < 1 {
			return model.Event{}, fmt.Errorf("%w: event %s: round number %d", ErrImport, d.ID, rd.Number)
		}
		if rd.Number > len(d.Rounds) {
			return model.Event{}, fmt.Errorf("%w: event %s: round %d of %d, round numbers must run 1..%d without gaps",
				ErrImport, d.ID, rd.Number, len(d.Rounds), len(d.Rounds))
		}
		if _, dup := numbers[rd.Number]; dup {
			return model.Event{}, fmt.Errorf("%w: event %s: round %d listed twice", ErrImport, d.ID, rd.Number)
		}
		numbers[rd.Number] = struct{}{}

		rows := make([]model.Placement, len(rd.Placements))
		for i, p := range rd.Placements {
			rows[i] = model.Placement{PlayerID: p.Player, Rank: p.Rank}
		}
		groups, err := model.GroupPlacements(rows)
		if err != nil {
			return model.Event{}, fmt.Errorf("%w: event %s round %d: %w", ErrImport, d.ID, rd.Number, err)
		}
		ev.Rounds = append(ev.Rounds, model.Round{EventID: d.ID, Number: rd.Number, Groups: groups})
	}
	return ev, nil
}

// Roster returns the declared players plus any undeclared player seen in a
// placement, in first-seen order.
func (d EventDoc) Roster() []model.Player {
	seen := make(map[string]struct{})
	var out []model.Player
	add := func(id, name string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, model.Player{ID: id, Name: name})
	}
	for _, p := range d.Players {
		add(p.ID, p.Name)
	}
	for _, rd := range d.Rounds {
		for _, p := range rd.Placements {
			add(p.Player, "")
		}
	}
	return out
}

// History converts every event of the file into a rating history. Players
// declared by several events keep the first non-empty name.
func (f *File) History() (model.History, error) {
	var h model.History
	index := make(map[string]int)
	for _, doc := range f.Events {
		ev, err := doc.Event()
		if err != nil {
			return model.History{}, err
		}
		h.Events = append(h.Events, ev)
		for _, p := range doc.Roster() {
			i, ok := index[p.ID]
			if !ok {
				index[p.ID] = len(h.Players)
				h.Players = append(h.Players, p)
				continue
			}
			if h.Players[i].Name == "" {
				h.Players[i].Name = p.Name
			}
		}
	}
	return h, nil
}
