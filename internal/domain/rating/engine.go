package rating

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/okian/roundelo/internal/adapters/repository"
	"github.com/okian/roundelo/internal/domain/model"
	"github.com/okian/roundelo/internal/domain/scoring"
	"github.com/okian/roundelo/pkg/logger"
	"github.com/okian/roundelo/pkg/metrics"
)

// State is the lifecycle position of an Engine. Transitions only move forward.
type State int

const (
	StateIdle State = iota
	StateOrdering
	StateProcessing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOrdering:
		return "ordering"
	case StateProcessing:
		return "processing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RoundRef labels a round index of the run.
type RoundRef struct {
	Index   int
	EventID string
	Round   int
}

// Result is the output of a run.
type Result struct {
	RunID   string
	Initial float64
	// Rounds lists the processed rounds; Rounds[i] is round index i+1.
	Rounds []RoundRef
	// Histories holds, per player, the rating after each processed round.
	Histories map[string][]float64
	// Current holds every player's rating after the last processed round.
	Current map[string]float64
	// Complete is false when the run stopped early; the data then covers
	// only the rounds listed in Rounds.
	Complete bool
}

// Engine runs one rating computation. It is single use: create a new Engine
// for every run.
type Engine struct {
	params    Params
	weigher   *scoring.Weigher
	logger    logger.Logger
	roster    []string
	hasRoster bool
	runID     string

	state  State
	store  *repository.MemoryStore
	rounds []RoundRef
}

// New validates params and returns an idle engine.
func New(params Params, opts ...Option) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		params: params,
		weigher: scoring.NewWeigher(
			scoring.WithFieldSize(params.FieldSize),
			scoring.WithSoloPolicy(params.Solo),
		),
		runID: newRunID(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}
	e.logger = e.logger.With(logger.String("run_id", e.runID))
	return e, nil
}

// Compute runs a fresh engine over h.
func Compute(ctx context.Context, h model.History, params Params, opts ...Option) (*Result, error) {
	e, err := New(params, opts...)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, h)
}

// State returns the engine's lifecycle state.
func (e *Engine) State() State { return e.state }

// RunID returns the id tagging this run's logs and results.
func (e *Engine) RunID() string { return e.runID }

// Store returns the rating store of the run, nil before Run.
func (e *Engine) Store() repository.Store {
	if e.store == nil {
		return nil
	}
	return e.store
}

// Run orders the history and processes every round. On failure or
// cancellation the returned result covers the rounds committed so far and
// has Complete=false.
func (e *Engine) Run(ctx context.Context, h model.History) (*Result, error) {
	if e.state != StateIdle {
		return nil, ErrEngineSpent
	}
	start := time.Now()

	e.state = StateOrdering
	events, err := e.order(h.Events)
	if err != nil {
		return nil, e.fail(ctx, start, err)
	}

	universe := h.Participants()
	if e.hasRoster {
		universe = e.roster
	}
	e.store = repository.NewMemoryStore(universe, e.params.InitialRating,
		repository.WithExpectedRounds(h.RoundCount()))

	e.logger.Info(ctx, "rating run started",
		logger.Int("events", len(events)),
		logger.Int("rounds", h.RoundCount()),
		logger.Int("players", len(universe)),
		logger.Float64("k", e.params.K),
	)

	e.state = StateProcessing
	index := 0
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			metrics.RecordRun(metrics.OutcomeCancelled, msSince(start))
			e.state = StateFailed
			e.logger.Warn(ctx, "rating run cancelled", logger.Int("rounds_committed", index))
			return e.result(ctx, false), fmt.Errorf("rating run cancelled: %w", err)
		}
		for _, r := range ev.Rounds {
			index++
			if err := e.processRound(ctx, ev.ID, r, index); err != nil {
				return e.result(ctx, false), e.fail(ctx, start, err)
			}
			e.rounds = append(e.rounds, RoundRef{Index: index, EventID: ev.ID, Round: r.Number})
		}
		metrics.RecordEventProcessed()
		e.logger.Debug(ctx, "event processed",
			logger.String("event_id", ev.ID),
			logger.Int("rounds", len(ev.Rounds)),
			logger.Int("index", index),
		)
	}

	e.state = StateDone
	metrics.RecordRun(metrics.OutcomeComplete, msSince(start))
	e.logger.Info(ctx, "rating run finished",
		logger.Int("rounds", index),
		logger.Duration("took", time.Since(start)),
	)
	return e.result(ctx, true), nil
}

// order sorts events chronologically and rounds by number, and checks that
// fsm is usable for every field size in the history.
func (e *Engine) order(in []model.Event) ([]model.Event, error) {
	events := model.SortEvents(in)
	sizes := make(map[int]struct{})
	for i := range events {
		rounds := make([]model.Round, len(events[i].Rounds))
		copy(rounds, events[i].Rounds)
		sort.SliceStable(rounds, func(a, b int) bool { return rounds[a].Number < rounds[b].Number })
		for j, r := range rounds {
			if r.Number != j+1 {
				return nil, &MalformedRoundError{
					EventID: events[i].ID,
					Round:   r.Number,
					Reason:  fmt.Sprintf("round numbers must run 1..%d without gaps", len(rounds)),
				}
			}
			if n := r.Size(); n > 0 {
				sizes[n] = struct{}{}
			}
		}
		events[i].Rounds = rounds
	}

	for n := range sizes {
		if err := scoring.CheckFieldSize(e.params.FieldSize, n); err != nil {
			return nil, &ConfigurationError{Field: "fsm", Reason: err.Error()}
		}
	}
	return events, nil
}

// processRound computes index from index-1. Nothing is written unless the
// whole round is valid.
func (e *Engine) processRound(ctx context.Context, eventID string, r model.Round, index int) error {
	for _, grp := range r.Groups {
		if len(grp) == 0 {
			return &MalformedRoundError{EventID: eventID, Round: r.Number, Reason: "empty tie group", Err: scoring.ErrEmptyGroup}
		}
	}

	ratings := e.store.Current(ctx)
	participants := r.Participants()

	// Only a round without groups is a no-op.
	if len(participants) == 0 {
		if err := e.store.Commit(ctx, index, ratings); err != nil {
			return fmt.Errorf("commit round %d: %w", index, err)
		}
		metrics.RecordEmptyRound()
		return nil
	}

	for _, id := range participants {
		if !e.store.Has(ctx, id) {
			return &MalformedRoundError{EventID: eventID, Round: r.Number, PlayerID: id, Reason: "player outside the universe"}
		}
	}

	actual, err := e.weigher.Actual(r.Groups)
	if err != nil {
		return e.roundError(eventID, r.Number, err)
	}
	expected, err := e.weigher.Expected(participants, ratings)
	if err != nil {
		return e.roundError(eventID, r.Number, err)
	}

	// Non-participants keep their entry from index-1.
	for _, id := range participants {
		ratings[id] += e.params.K * (actual[id] - expected[id])
	}
	if err := e.store.Commit(ctx, index, ratings); err != nil {
		return fmt.Errorf("commit round %d: %w", index, err)
	}
	metrics.RecordRoundProcessed()
	return nil
}

// roundError maps scoring failures onto the run's error taxonomy.
func (e *Engine) roundError(eventID string, round int, err error) error {
	var re *scoring.RatingError
	if errors.As(err, &re) {
		return &DegenerateFieldError{EventID: eventID, Round: round, PlayerID: re.PlayerID, Rating: re.Rating}
	}
	var fe *scoring.FieldSizeError
	if errors.As(err, &fe) {
		return &ConfigurationError{Field: "fsm", Reason: fe.Error()}
	}
	switch {
	case errors.Is(err, scoring.ErrEmptyGroup):
		return &MalformedRoundError{EventID: eventID, Round: round, Reason: "empty tie group", Err: err}
	case errors.Is(err, scoring.ErrDuplicatePlayer):
		return &MalformedRoundError{EventID: eventID, Round: round, Reason: "player placed twice", Err: err}
	}
	return fmt.Errorf("event %s round %d: %w", eventID, round, err)
}

func (e *Engine) fail(ctx context.Context, start time.Time, err error) error {
	e.state = StateFailed
	metrics.RecordRun(metrics.OutcomeFailed, msSince(start))
	metrics.RecordRunError(ErrorKind(err))
	e.logger.Error(ctx, "rating run failed", logger.Error(err), logger.Int("rounds_committed", len(e.rounds)))
	return err
}

func (e *Engine) result(ctx context.Context, complete bool) *Result {
	return &Result{
		RunID:     e.runID,
		Initial:   e.params.InitialRating,
		Rounds:    append([]RoundRef(nil), e.rounds...),
		Histories: e.store.Histories(ctx),
		Current:   e.store.Current(ctx),
		Complete:  complete,
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
