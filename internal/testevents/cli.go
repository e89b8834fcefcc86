package testevents

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/roundelo/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging routes the logger to both console and file. If logFile is
// empty, a timestamped filename is generated. The returned func closes the
// file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file.Close, nil
}

// ShowHelp prints usage information for the test events tool.
func ShowHelp() {
	os.Stdout.WriteString(`Roundelo Event Test Tool
========================

Generates a synthetic tournament season as a results file and checks a
running service's leaderboard and ranks against an in-process rating run.

Usage:
  go run ./cmd/test-events [options]

Options:
  -url string
        Base URL of the service; empty only generates (default "")
  -input string
        Results file to verify instead of generating one
  -output string
        Write the generated results file here
  -events int
        Number of events to generate (default 40)
  -players int
        Size of the player pool (default 120)
  -rounds int
        Maximum rounds per event (default 6)
  -field int
        Maximum players per round (default 16)
  -seed uint
        Generator seed (default 1)
  -top int
        Number of leaderboard entries to compare (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Rating parameters are read the same way the server reads them
(ROUNDELO_CONFIG and ROUNDELO_* variables).

Examples:
  # Generate a season and load it
  go run ./cmd/test-events -output season.yaml
  go run ./cmd/import -db roundelo.db season.yaml

  # Check the running server against the same file
  go run ./cmd/test-events -input season.yaml -url http://localhost:9080
`)
}
