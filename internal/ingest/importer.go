package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/roundelo/internal/domain/dedupe"
	"github.com/okian/roundelo/internal/domain/model"
	"github.com/okian/roundelo/pkg/logger"
	"github.com/okian/roundelo/pkg/metrics"
)

// Sink persists imported events.
type Sink interface {
	SaveEvent(ctx context.Context, ev model.Event, players []model.Player) error
}

// Report summarises one import.
type Report struct {
	Imported []string
	Skipped  []string
}

// Importer moves events from results files into a Sink, skipping event ids
// it has already seen.
type Importer struct {
	sink    Sink
	deduper dedupe.Deduper
	logger  logger.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithDeduper sets the deduper; use dedupe.WithSeen to skip stored events.
func WithDeduper(d dedupe.Deduper) Option {
	return func(i *Importer) {
		if d != nil {
			i.deduper = d
		}
	}
}

// WithLogger sets the importer logger.
func WithLogger(l logger.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewImporter creates an importer writing to sink.
func NewImporter(sink Sink, opts ...Option) *Importer {
	i := &Importer{sink: sink}
	for _, opt := range opts {
		opt(i)
	}
	if i.deduper == nil {
		i.deduper = dedupe.NewDeduper()
	}
	if i.logger == nil {
		i.logger = logger.Get().Named("ingest")
	}
	return i
}

// Import decodes r and saves every new event. It stops at the first invalid
// event; events saved before it stay saved.
func (i *Importer) Import(ctx context.Context, r io.Reader) (Report, error) {
	f, err := Decode(r)
	if err != nil {
		return Report{}, err
	}
	return i.ImportFile(ctx, f)
}

// ImportFile saves the events of an already decoded file.
func (i *Importer) ImportFile(ctx context.Context, f *File) (Report, error) {
	var rep Report
	for _, doc := range f.Events {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("%w: %w", ErrImport, err)
		}
		if i.deduper.SeenAndRecord(ctx, doc.ID) {
			metrics.RecordEventDuplicate()
			i.logger.Debug(ctx, "event skipped", logger.String("event_id", doc.ID))
			rep.Skipped = append(rep.Skipped, doc.ID)
			continue
		}

		ev, err := doc.Event()
		if err == nil {
			err = i.sink.SaveEvent(ctx, ev, doc.Roster())
		}
		if err != nil {
			i.deduper.Unrecord(ctx, doc.ID)
			i.logger.Error(ctx, "event import failed", logger.String("event_id", doc.ID), logger.Error(err))
			return rep, err
		}

		metrics.RecordEventImported()
		i.logger.Info(ctx, "event imported",
			logger.String("event_id", ev.ID),
			logger.Int("rounds", len(ev.Rounds)),
		)
		rep.Imported = append(rep.Imported, ev.ID)
	}
	return rep, nil
}
