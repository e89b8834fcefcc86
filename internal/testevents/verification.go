package testevents

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/roundelo/internal/adapters/repository"
	"github.com/okian/roundelo/internal/domain/model"
	"github.com/okian/roundelo/internal/domain/rating"
	"github.com/okian/roundelo/pkg/logger"
)

// computeLocal rates h in-process with the parameters the service is
// expected to use.
func computeLocal(ctx context.Context, config *Config, h model.History) (repository.Store, error) {
	engine, err := rating.New(config.Params,
		rating.WithRunID("local"),
		rating.WithLogger(logger.Get().Named("local")),
	)
	if err != nil {
		return nil, err
	}
	if _, err := engine.Run(ctx, h); err != nil {
		return nil, fmt.Errorf("local computation failed: %w", err)
	}
	return engine.Store(), nil
}

// verifyResults compares the service's answers with the local store.
func verifyResults(ctx context.Context, config *Config, local repository.Store, rankings map[string]Entry, leaderboard []Entry, stats *Stats) error {
	log := logger.Get().Named("verify")
	mismatches := 0
	report := func(kind string, want, got Entry) {
		mismatches++
		if config.Verbose || mismatches <= 10 {
			log.Warn(ctx, "mismatch",
				logger.String("kind", kind),
				logger.String("player_id", want.PlayerID),
				logger.Int("want_rank", want.Rank),
				logger.Int("got_rank", got.Rank),
				logger.Float64("want_rating", want.Rating),
				logger.Float64("got_rating", got.Rating))
		}
	}

	if len(leaderboard) > 0 {
		want, err := local.TopN(ctx, len(leaderboard))
		if err != nil {
			return err
		}
		if len(want) != len(leaderboard) {
			return fmt.Errorf("%w: leaderboard has %d entries, expected %d", ErrMismatch, len(leaderboard), len(want))
		}
		for i, got := range leaderboard {
			if !sameEntry(fromStore(want[i]), got, config.Tolerance) {
				report("leaderboard", fromStore(want[i]), got)
			}
			if i > 0 && got.Rating > leaderboard[i-1].Rating {
				return fmt.Errorf("%w: leaderboard not sorted at position %d", ErrMismatch, i+1)
			}
		}
	}

	for _, id := range local.Players(ctx) {
		got, ok := rankings[id]
		if !ok {
			continue
		}
		want, err := local.Rank(ctx, id)
		if err != nil {
			return err
		}
		if !sameEntry(fromStore(want), got, config.Tolerance) {
			report("rank", fromStore(want), got)
		}
	}

	stats.Mismatches = mismatches
	displayTopPerformers(ctx, leaderboard)
	if mismatches > 0 {
		return fmt.Errorf("%w: %d entries differ", ErrMismatch, mismatches)
	}
	log.Info(ctx, "service ratings verified")
	return nil
}

func fromStore(e repository.Entry) Entry {
	return Entry{Rank: e.Rank, PlayerID: e.PlayerID, Rating: e.Rating}
}

func sameEntry(want, got Entry, tolerance float64) bool {
	return want.PlayerID == got.PlayerID &&
		want.Rank == got.Rank &&
		math.Abs(want.Rating-got.Rating) <= tolerance
}

// displayTopPerformers logs the head of the leaderboard.
func displayTopPerformers(ctx context.Context, leaderboard []Entry) {
	topN := min(10, len(leaderboard))
	for _, e := range leaderboard[:topN] {
		logger.Get().Info(ctx, "top performer",
			logger.Int("rank", e.Rank),
			logger.String("player_id", e.PlayerID),
			logger.String("name", e.Name),
			logger.Float64("rating", e.Rating))
	}
}
