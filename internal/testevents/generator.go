package testevents

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/roundelo/internal/ingest"
	"github.com/okian/roundelo/pkg/logger"
)

// playerNamespace derives stable player ids from the generator seed.
var playerNamespace = uuid.MustParse("8f5f7d1e-3c2a-4b8e-9a61-2f0c7e4d5b10")

// pooledPlayer is a generated player with a hidden skill level.
type pooledPlayer struct {
	id    string
	name  string
	skill float64
}

func (c *Config) validate() error {
	switch {
	case c.NumEvents < 1:
		return fmt.Errorf("%w: events must be positive", ErrInvalidConfig)
	case c.NumPlayers < minField:
		return fmt.Errorf("%w: need at least %d players", ErrInvalidConfig, minField)
	case c.MaxRounds < 1:
		return fmt.Errorf("%w: rounds must be positive", ErrInvalidConfig)
	case c.FieldSize < minField:
		return fmt.Errorf("%w: field size must be at least %d", ErrInvalidConfig, minField)
	}
	return nil
}

// Generate builds a synthetic results file. The output depends only on the
// config, so a rerun with the same seed reproduces the same file.
func Generate(ctx context.Context, config *Config, stats *Stats) (*ingest.File, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	logger.Get().Info(ctx, "generating results file",
		logger.Int("events", config.NumEvents),
		logger.Int("players", config.NumPlayers),
		logger.Any("seed", config.Seed))

	pool := generatePool(config)

	type eventResult struct {
		index int
		event ingest.EventDoc
	}

	resultChan := make(chan eventResult, config.NumEvents)

	workerCount := max(1, min(config.Workers, config.NumEvents))
	eventsPerWorker := config.NumEvents / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * eventsPerWorker
		end := start + eventsPerWorker
		if worker == workerCount-1 {
			end = config.NumEvents
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				resultChan <- eventResult{index: i, event: generateEvent(config, pool, i)}
			}
		}(start, end)
	}

	file := &ingest.File{Events: make([]ingest.EventDoc, config.NumEvents)}
	for i := 0; i < config.NumEvents; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during generation: %w", ctx.Err())
		case result := <-resultChan:
			file.Events[result.index] = result.event
			stats.RoundsGenerated += len(result.event.Rounds)
		}
	}

	stats.EventsGenerated = len(file.Events)
	logger.Get().Info(ctx, "generated events",
		logger.Int("events", stats.EventsGenerated),
		logger.Int("rounds", stats.RoundsGenerated))
	return file, nil
}

// generatePool creates the players and their skills.
func generatePool(config *Config) []pooledPlayer {
	rng := rand.New(rand.NewPCG(config.Seed, 0))
	pool := make([]pooledPlayer, config.NumPlayers)
	for i := range pool {
		id := uuid.NewSHA1(playerNamespace, fmt.Appendf(nil, "%d/%d", config.Seed, i))
		pool[i] = pooledPlayer{
			id:    id.String(),
			name:  fmt.Sprintf("Player %03d", i+1),
			skill: rng.NormFloat64(),
		}
	}
	return pool
}

// generateEvent draws rounds for event index. Each event has its own
// stream so events can be generated in any order.
func generateEvent(config *Config, pool []pooledPlayer, index int) ingest.EventDoc {
	rng := rand.New(rand.NewPCG(config.Seed, uint64(index)+1))

	ev := ingest.EventDoc{
		ID:        fmt.Sprintf("ev-%04d", index+1),
		Name:      fmt.Sprintf("Week %d Open", index/2+1),
		StartDate: seasonStart.Add(eventSpacing * time.Duration(index/2)).Format(ingest.DateLayout),
	}

	entrants := drawField(rng, pool, min(len(pool), config.FieldSize*2))
	for _, p := range entrants {
		ev.Players = append(ev.Players, ingest.PlayerDoc{ID: p.id, Name: p.name})
	}

	rounds := 1 + rng.IntN(config.MaxRounds)
	for n := 1; n <= rounds; n++ {
		size := minField + rng.IntN(min(config.FieldSize, len(entrants))-minField+1)
		field := drawField(rng, entrants, size)
		ev.Rounds = append(ev.Rounds, ingest.RoundDoc{Number: n, Placements: placeField(rng, field)})
	}
	return ev
}

// drawField picks size distinct players from pool.
func drawField(rng *rand.Rand, pool []pooledPlayer, size int) []pooledPlayer {
	perm := rng.Perm(len(pool))
	out := make([]pooledPlayer, size)
	for i := range out {
		out[i] = pool[perm[i]]
	}
	return out
}

// placeField ranks one round. Performances are skill plus noise, quantized
// so near-equal players tie; ranks follow competition ranking.
func placeField(rng *rand.Rand, field []pooledPlayer) []ingest.PlacementDoc {
	type run struct {
		id    string
		score float64
	}
	runs := make([]run, len(field))
	for i, p := range field {
		perf := p.skill + rng.NormFloat64()*noiseScale
		runs[i] = run{id: p.id, score: math.Round(perf/performanceStep) * performanceStep}
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].score != runs[j].score {
			return runs[i].score > runs[j].score
		}
		return runs[i].id < runs[j].id
	})

	out := make([]ingest.PlacementDoc, len(runs))
	for i, r := range runs {
		rank := i + 1
		if i > 0 && r.score == runs[i-1].score {
			rank = out[i-1].Rank
		}
		out[i] = ingest.PlacementDoc{Player: r.id, Rank: rank}
	}
	return out
}
