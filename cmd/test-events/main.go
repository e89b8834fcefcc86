package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/okian/roundelo/internal/config"
	"github.com/okian/roundelo/internal/testevents"
)

// Default configuration constants.
const (
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultSeed        = 1
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "", "Base URL of the service; empty only generates")
		inputFile  = flag.String("input", "", "Results file to verify instead of generating one")
		outputFile = flag.String("output", "", "Write the generated results file here")
		numEvents  = flag.Int("events", testevents.DefaultNumEvents, "Number of events to generate")
		numPlayers = flag.Int("players", testevents.DefaultNumPlayers, "Size of the player pool")
		maxRounds  = flag.Int("rounds", testevents.DefaultMaxRounds, "Maximum rounds per event")
		fieldSize  = flag.Int("field", testevents.DefaultFieldSize, "Maximum players per round")
		seed       = flag.Uint64("seed", defaultSeed, "Generator seed")
		topN       = flag.Int("top", testevents.DefaultTopN, "Number of leaderboard entries to compare")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", testevents.DefaultTimeout, "HTTP request timeout")
		logFile    = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp()
		return
	}

	flagConfig := &testevents.Config{
		BaseURL:    *baseURL,
		InputFile:  *inputFile,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		NumEvents:  *numEvents,
		NumPlayers: *numPlayers,
		MaxRounds:  *maxRounds,
		FieldSize:  *fieldSize,
		Seed:       *seed,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		Tolerance:  testevents.DefaultTolerance,
		Verbose:    *verbose,
	}

	if err := run(flagConfig, *logFile, *verbose); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// run loads the rating parameters the server would use and executes the
// test.
func run(testConfig *testevents.Config, logFile string, verbose bool) error {
	closeLog, err := testevents.SetupLogging(logFile, verbose)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if testConfig.Params, err = cfg.Params(); err != nil {
		return err
	}
	return testevents.Run(ctx, testConfig)
}
