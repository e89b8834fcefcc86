package testevents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/roundelo/internal/ingest"
	"github.com/okian/roundelo/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run generates (or reads) a results file, rates it locally and, when a
// base URL is set, checks the service's leaderboard and ranks against the
// local ratings.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting roundelo event test",
		logger.String("baseURL", config.BaseURL),
		logger.String("input", config.InputFile),
		logger.Int("workers", config.Workers),
		logger.Float64("k", config.Params.K),
		logger.Any("verbose", config.Verbose))

	// Step 1: Load or generate the results file
	file, err := loadOrGenerate(ctx, config, stats)
	if err != nil {
		return err
	}

	// Step 2: Save it for cmd/import
	if config.OutputFile != "" {
		if err := saveResultsFile(ctx, config.OutputFile, file); err != nil {
			return fmt.Errorf("saving results file failed: %w", err)
		}
	}

	// Step 3: Rate locally
	h, err := file.History()
	if err != nil {
		return fmt.Errorf("results file is not rateable: %w", err)
	}
	local, err := computeLocal(ctx, config, h)
	if err != nil {
		return err
	}
	stats.PlayersRated = len(local.Players(ctx))

	if config.BaseURL != "" {
		// Step 4: Check service health
		if err := checkServiceHealth(ctx, config); err != nil {
			return fmt.Errorf("service health check failed: %w", err)
		}

		// Step 5: Retrieve rankings concurrently
		rankings, err := retrieveRankings(ctx, config, local.Players(ctx), stats)
		if err != nil {
			return fmt.Errorf("ranking retrieval failed: %w", err)
		}

		// Step 6: Get leaderboard
		leaderboard, err := getLeaderboard(ctx, config, stats)
		if err != nil {
			return fmt.Errorf("leaderboard retrieval failed: %w", err)
		}

		// Step 7: Verify results
		if err := verifyResults(ctx, config, local, rankings, leaderboard, stats); err != nil {
			return fmt.Errorf("result verification failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

func loadOrGenerate(ctx context.Context, config *Config, stats *Stats) (*ingest.File, error) {
	if config.InputFile == "" {
		file, err := Generate(ctx, config, stats)
		if err != nil {
			return nil, fmt.Errorf("event generation failed: %w", err)
		}
		return file, nil
	}
	file, err := ingest.ReadFile(config.InputFile)
	if err != nil {
		return nil, err
	}
	stats.EventsGenerated = len(file.Events)
	for _, ev := range file.Events {
		stats.RoundsGenerated += len(ev.Rounds)
	}
	return file, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 is healthy; the body is the Prometheus exposition.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveResultsFile writes file as YAML, creating the directory if needed.
func saveResultsFile(ctx context.Context, filename string, file *ingest.File) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	fh, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := fh.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	if err := ingest.Encode(fh, file); err != nil {
		return err
	}

	logger.Get().Info(ctx, "results saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("roundsGenerated", stats.RoundsGenerated),
		logger.Int("playersRated", stats.PlayersRated),
		logger.Int("rankingsRetrieved", stats.RankingsRetrieved),
		logger.Int("rankingsFailed", stats.RankingsFailed),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration))
}
