package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/roundelo/internal/adapters/sqlstore"
	"github.com/okian/roundelo/internal/config"
	"github.com/okian/roundelo/internal/domain/dedupe"
	"github.com/okian/roundelo/internal/ingest"
	"github.com/okian/roundelo/pkg/logger"
)

func main() {
	var (
		dbPath = flag.String("db", "", "sqlite file to import into (default: db_path from config)")
		help   = flag.Bool("help", false, "Show help")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] results.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *help || flag.NArg() == 0 {
		flag.Usage()
		return
	}

	if err := run(*dbPath, flag.Args()); err != nil {
		os.Stderr.WriteString("import failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// run imports every file in order. Events already stored are skipped, so a
// file can be imported again after new events are appended to it.
func run(dbPath string, files []string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	store, err := sqlstore.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.EventIDs(ctx)
	if err != nil {
		return err
	}
	importer := ingest.NewImporter(store,
		ingest.WithDeduper(dedupe.NewDeduper(dedupe.WithSeen(stored...))),
		ingest.WithLogger(logger.Named("import")),
	)

	log := logger.Get()
	for _, path := range files {
		f, err := ingest.ReadFile(path)
		if err != nil {
			return err
		}
		report, err := importer.ImportFile(ctx, f)
		log.Info(ctx, "results file processed",
			logger.String("file", path),
			logger.Int("imported", len(report.Imported)),
			logger.Int("skipped", len(report.Skipped)))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
