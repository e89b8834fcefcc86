package testevents

import (
	"time"

	"github.com/okian/roundelo/internal/domain/rating"
	"github.com/okian/roundelo/internal/domain/types"
)

// Config holds configuration for a generate-and-verify run.
type Config struct {
	BaseURL    string        // Base URL of the service; empty skips verification
	InputFile  string        // Results file to verify instead of generating one
	OutputFile string        // Output file for the generated results
	LogFile    string        // Log file for test output
	NumEvents  int           // Number of events to generate
	NumPlayers int           // Size of the player pool
	MaxRounds  int           // Upper bound on rounds per event
	FieldSize  int           // Upper bound on players per round
	Seed       uint64        // Seed of the generator; equal seeds give equal files
	TopN       int           // Number of leaderboard entries to compare
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Tolerance  float64       // Allowed absolute rating difference
	Verbose    bool          // Enable verbose logging

	// Params must match the rating parameters of the service under test.
	Params rating.Params
}

// Entry is a leaderboard row as served by the API.
type Entry = types.Entry

// Stats holds test statistics
type Stats struct {
	EventsGenerated    int
	RoundsGenerated    int
	PlayersRated       int
	RankingsRetrieved  int
	RankingsFailed     int
	LeaderboardEntries int
	Mismatches         int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
