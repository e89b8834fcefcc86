// Package service provides the rating service behind the HTTP API: it loads
// the stored history, runs the engine and answers read queries against the
// latest published result.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/roundelo/internal/adapters/repository"
	"github.com/okian/roundelo/internal/domain/model"
	"github.com/okian/roundelo/internal/domain/rating"
	"github.com/okian/roundelo/internal/domain/types"
	"github.com/okian/roundelo/pkg/logger"
	"github.com/okian/roundelo/pkg/metrics"
)

// HistorySource provides the events to rate.
type HistorySource interface {
	LoadHistory(ctx context.Context, eventIDs ...string) (model.History, error)
}

// SnapshotSink persists the current ratings of a finished run.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, res *rating.Result) error
}

// published is one complete run. It is replaced as a whole and never
// mutated after publication.
type published struct {
	result   *rating.Result
	store    repository.Store
	names    map[string]string
	events   int
	computed time.Time
}

// Service implements the API dependencies for the rating system.
type Service struct {
	mu sync.RWMutex

	source    HistorySource
	snapshots SnapshotSink
	params    rating.Params
	roster    []string

	current *published
	runs    int
	lastErr error
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSnapshots persists the ratings of every successful run.
func WithSnapshots(sink SnapshotSink) Option {
	return func(s *Service) {
		s.snapshots = sink
	}
}

// WithRoster fixes the player universe of every run.
func WithRoster(players []string) Option {
	return func(s *Service) {
		s.roster = append([]string(nil), players...)
	}
}

// New constructs a Service rating the history of source with params.
func New(source HistorySource, params rating.Params, opts ...Option) *Service {
	s := &Service{
		source: source,
		params: params,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start computes the first ratings. It fails when that run fails.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting rating service...")
	if err := s.Recompute(ctx); err != nil {
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		return err
	}
	return nil
}

// Stop marks the service stopped. Published ratings stay readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "rating service stopped")
}

// Recompute reloads the history and runs a fresh engine. The new result is
// published only when the run completes; readers keep the previous one
// otherwise.
func (s *Service) Recompute(ctx context.Context) error {
	h, err := s.source.LoadHistory(ctx)
	if err != nil {
		s.recordFailure(err)
		return fmt.Errorf("load history: %w", err)
	}

	var opts []rating.Option
	if s.roster != nil {
		opts = append(opts, rating.WithRoster(s.roster))
	}
	opts = append(opts, rating.WithLogger(s.log().Named("engine")))
	engine, err := rating.New(s.params, opts...)
	if err != nil {
		s.recordFailure(err)
		return err
	}
	res, err := engine.Run(ctx, h)
	if err != nil {
		s.recordFailure(err)
		return err
	}

	if s.snapshots != nil {
		if err := s.snapshots.SaveSnapshot(ctx, res); err != nil {
			s.log().Warn(ctx, "snapshot not saved", logger.String("run_id", res.RunID), logger.Error(err))
		}
	}

	next := &published{
		result:   res,
		store:    engine.Store(),
		names:    h.Names(),
		events:   len(h.Events),
		computed: time.Now(),
	}
	s.mu.Lock()
	s.current = next
	s.runs++
	s.lastErr = nil
	s.mu.Unlock()

	metrics.UpdateRatedPlayers(len(res.Current))
	s.log().Info(ctx, "ratings published",
		logger.String("run_id", res.RunID),
		logger.Int("events", next.events),
		logger.Int("rounds", len(res.Rounds)),
		logger.Int("players", len(res.Current)),
	)
	return nil
}

func (s *Service) recordFailure(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get().Named("service")
	}
	return s.logger
}

func (s *Service) snapshot() (*published, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, types.ErrNotReady
	}
	return s.current, nil
}

func (p *published) entry(e repository.Entry) types.Entry {
	return types.Entry{Rank: e.Rank, PlayerID: e.PlayerID, Name: p.names[e.PlayerID], Rating: e.Rating}
}

// TopN returns the top n leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	p, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	entries, err := p.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = p.entry(e)
	}
	return out, nil
}

// Rank returns the leaderboard entry of a player.
func (s *Service) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	p, err := s.snapshot()
	if err != nil {
		return types.Entry{}, err
	}
	e, err := p.store.Rank(ctx, playerID)
	if err != nil {
		return types.Entry{}, err
	}
	return p.entry(e), nil
}

// History returns a player's rating after every round of the run.
func (s *Service) History(ctx context.Context, playerID string) (types.PlayerHistory, error) {
	p, err := s.snapshot()
	if err != nil {
		return types.PlayerHistory{}, err
	}
	series, err := p.store.History(ctx, playerID)
	if err != nil {
		return types.PlayerHistory{}, err
	}
	out := types.PlayerHistory{
		PlayerID: playerID,
		Name:     p.names[playerID],
		Initial:  p.result.Initial,
		Points:   make([]types.RatingPoint, len(series)),
	}
	for i, r := range series {
		ref := p.result.Rounds[i]
		out.Points[i] = types.RatingPoint{Index: ref.Index, EventID: ref.EventID, Round: ref.Round, Rating: r}
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"runs":    s.runs,
		"k":       s.params.K,
		"initial": s.params.InitialRating,
		"solo":    s.params.Solo.String(),
	}
	if s.lastErr != nil {
		stats["lastError"] = s.lastErr.Error()
		stats["lastErrorKind"] = rating.ErrorKind(s.lastErr)
	}
	if s.current != nil {
		stats["runId"] = s.current.result.RunID
		stats["events"] = s.current.events
		stats["rounds"] = len(s.current.result.Rounds)
		stats["players"] = len(s.current.result.Current)
		stats["computedAt"] = s.current.computed.UTC().Format(time.RFC3339)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	return stats
}
