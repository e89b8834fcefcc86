package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/okian/roundelo/internal/adapters/sqlstore"
	"github.com/okian/roundelo/internal/config"
	"github.com/okian/roundelo/internal/domain/model"
	"github.com/okian/roundelo/internal/ingest"
	"github.com/okian/roundelo/internal/sweep"
	"github.com/okian/roundelo/pkg/logger"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "sqlite file to rate (default: db_path from config)")
		file    = flag.String("file", "", "Rate a results file instead of the database")
		kList   = flag.String("k", "", "Comma-separated K factors (default: sweep_k_factors from config)")
		workers = flag.Int("workers", 0, "Number of concurrent engines (default: sweep_workers from config)")
	)
	flag.Parse()

	if err := run(*dbPath, *file, *kList, *workers); err != nil {
		os.Stderr.WriteString("sweep failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(dbPath, file, kList string, workers int) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	if kList != "" {
		cfg.SweepKFactors = kList
	}
	if workers > 0 {
		cfg.SweepWorkers = workers
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	params, err := cfg.Params()
	if err != nil {
		return err
	}
	ks, err := cfg.KFactors()
	if err != nil {
		return err
	}

	h, err := loadHistory(ctx, cfg.DBPath, file)
	if err != nil {
		return err
	}

	outcomes := sweep.NewRunner(
		sweep.WithWorkers(cfg.SweepWorkers),
		sweep.WithLogger(logger.Named("sweep")),
	).Run(ctx, h, sweep.KFactorJobs(params, ks))

	failed := writeReport(os.Stdout, outcomes)
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(outcomes))
	}
	return nil
}

// loadHistory reads the history from file when set, otherwise from the
// placement store at dbPath.
func loadHistory(ctx context.Context, dbPath, file string) (model.History, error) {
	if file != "" {
		f, err := ingest.ReadFile(file)
		if err != nil {
			return model.History{}, err
		}
		return f.History()
	}
	store, err := sqlstore.Open(dbPath)
	if err != nil {
		return model.History{}, err
	}
	defer store.Close()
	return store.LoadHistory(ctx)
}

// writeReport prints one row per job and returns the number of failures.
func writeReport(w io.Writer, outcomes []sweep.Outcome) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tROUNDS\tPLAYERS\tLEADER\tRATING\tSPREAD\tTOOK\tSTATUS")
	failed := 0
	for _, o := range outcomes {
		s := sweep.Summarize(o)
		status := "ok"
		if s.Err != nil {
			failed++
			status = s.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			s.Name, s.Rounds, s.Players, s.Leader,
			strconv.FormatFloat(s.LeaderRating, 'f', 2, 64),
			strconv.FormatFloat(s.Spread, 'f', 2, 64),
			o.Took.Round(time.Microsecond), status)
	}
	_ = tw.Flush()
	return failed
}
