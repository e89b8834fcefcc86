package testevents

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/okian/roundelo/pkg/logger"
)

// retrieveRankings fetches /rank/{id} for every player concurrently. The
// result is keyed by player id; failed lookups are counted, not returned.
func retrieveRankings(ctx context.Context, config *Config, playerIDs []string, stats *Stats) (map[string]Entry, error) {
	log := logger.Get().Named("rankings")
	log.Info(ctx, "retrieving rankings",
		logger.Int("players", len(playerIDs)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)

	rankings := make([]Entry, len(playerIDs))
	var (
		retrieved int64
		failed    int64
	)

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < max(1, config.Workers); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				if ctx.Err() != nil {
					return
				}
				id := playerIDs[index]
				entry, err := retrieveSingleRanking(ctx, client, config.BaseURL, id)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "rank lookup failed", logger.String("player_id", id), logger.Error(err))
					}
					continue
				}
				rankings[index] = entry
				atomic.AddInt64(&retrieved, 1)
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range playerIDs {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled during rank retrieval: %w", err)
	}

	out := make(map[string]Entry, len(rankings))
	for _, entry := range rankings {
		if entry.PlayerID != "" {
			out[entry.PlayerID] = entry
		}
	}

	stats.RankingsRetrieved = int(atomic.LoadInt64(&retrieved))
	stats.RankingsFailed = int(atomic.LoadInt64(&failed))
	log.Info(ctx, "ranking retrieval completed",
		logger.Int("retrieved", stats.RankingsRetrieved),
		logger.Int("failed", stats.RankingsFailed))
	return out, nil
}

// retrieveSingleRanking retrieves the ranking of one player.
func retrieveSingleRanking(ctx context.Context, client *HTTPClient, baseURL, playerID string) (Entry, error) {
	var entry Entry
	if err := client.GetJSON(ctx, baseURL+"/rank/"+url.PathEscape(playerID), &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// getLeaderboard retrieves the top N leaderboard entries.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	logger.Get().Info(ctx, "getting leaderboard", logger.Int("limit", config.TopN))

	client := newHTTPClient(config.Timeout)
	var leaderboard []Entry
	if err := client.GetJSON(ctx, fmt.Sprintf("%s/leaderboard?limit=%d", config.BaseURL, config.TopN), &leaderboard); err != nil {
		return nil, err
	}

	stats.LeaderboardEntries = len(leaderboard)
	return leaderboard, nil
}
