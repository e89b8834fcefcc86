// Package sqlstore keeps imported placements and rating snapshots in sqlite
// through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/roundelo/internal/domain/model"
	"github.com/okian/roundelo/internal/domain/rating"
)

// Store is the relational placement store.
type Store struct {
	db *gorm.DB
}

// Option configures Open.
type Option func(*gorm.Config)

// WithGormLogger replaces the silent default gorm logger.
func WithGormLogger(l gormlogger.Interface) Option {
	return func(c *gorm.Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// Open opens the sqlite database at path and migrates the schema.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := &gorm.Config{Logger: gormlogger.Discard}
	for _, opt := range opts {
		opt(cfg)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStore, path, err)
	}
	if err := db.AutoMigrate(&playerRow{}, &eventRow{}, &placementRow{}, &snapshotRow{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %w", ErrStore, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return sqlDB.Close()
}

// SaveEvent writes an event with all its placements, replacing any earlier
// copy of the same event. Players are upserted; an empty name never
// overwrites a stored one.
func (s *Store) SaveEvent(ctx context.Context, ev model.Event, players []model.Player) error {
	if err := checkRounds(ev); err != nil {
		return fmt.Errorf("%w: save event %s: %w", ErrStore, ev.ID, err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(players) > 0 {
			rows := make([]playerRow, len(players))
			for i, p := range players {
				rows[i] = playerRow{ID: p.ID, Name: p.Name}
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"name": gorm.Expr("CASE WHEN excluded.name <> '' THEN excluded.name ELSE players.name END"),
				}),
			}).Create(&rows).Error
			if err != nil {
				return err
			}
		}

		if err := tx.Where("event_id = ?", ev.ID).Delete(&placementRow{}).Error; err != nil {
			return err
		}
		row := eventRow{ID: ev.ID, Name: ev.Name, StartDate: ev.StartDate, RoundCount: len(ev.Rounds)}
		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		var cells []placementRow
		for _, r := range ev.Rounds {
			for _, p := range model.Placements(r.Groups) {
				cells = append(cells, placementRow{EventID: ev.ID, RoundNum: r.Number, PlayerID: p.PlayerID, Rank: p.Rank})
			}
		}
		if len(cells) == 0 {
			return nil
		}
		return tx.Create(&cells).Error
	})
	if err != nil {
		return fmt.Errorf("%w: save event %s: %w", ErrStore, ev.ID, err)
	}
	return nil
}

// checkRounds requires round numbers 1..len(ev.Rounds) in any order. The
// stored round count then covers trailing empty rounds, which have no
// placement rows.
func checkRounds(ev model.Event) error {
	numbers := make([]int, len(ev.Rounds))
	for i, r := range ev.Rounds {
		numbers[i] = r.Number
	}
	sort.Ints(numbers)
	for i, n := range numbers {
		if n != i+1 {
			return &rating.MalformedRoundError{
				EventID: ev.ID,
				Round:   n,
				Reason:  fmt.Sprintf("round numbers must run 1..%d without gaps", len(numbers)),
			}
		}
	}
	return nil
}

// EventIDs lists stored event ids.
func (s *Store) EventIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&eventRow{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("%w: list events: %w", ErrStore, err)
	}
	return ids, nil
}

// LoadHistory reads the given events, or every event when none are named,
// with rounds 1..round_count. Rounds without placements load empty.
func (s *Store) LoadHistory(ctx context.Context, eventIDs ...string) (model.History, error) {
	db := s.db.WithContext(ctx)

	var events []eventRow
	q := db.Order("start_date").Order("id")
	if len(eventIDs) > 0 {
		q = q.Where("id IN ?", eventIDs)
	}
	if err := q.Find(&events).Error; err != nil {
		return model.History{}, fmt.Errorf("%w: load events: %w", ErrStore, err)
	}
	if len(eventIDs) > 0 {
		if missing := missingIDs(eventIDs, events); len(missing) > 0 {
			return model.History{}, fmt.Errorf("%w: events %v", ErrNotFound, missing)
		}
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	var cells []placementRow
	if len(ids) > 0 {
		err := db.Where("event_id IN ?", ids).
			Order("event_id").Order("round_num").Order("rank").Order("player_id").
			Find(&cells).Error
		if err != nil {
			return model.History{}, fmt.Errorf("%w: load placements: %w", ErrStore, err)
		}
	}

	byRound := make(map[string]map[int][]model.Placement, len(events))
	played := make(map[string]struct{})
	for _, c := range cells {
		if byRound[c.EventID] == nil {
			byRound[c.EventID] = make(map[int][]model.Placement)
		}
		byRound[c.EventID][c.RoundNum] = append(byRound[c.EventID][c.RoundNum], model.Placement{PlayerID: c.PlayerID, Rank: c.Rank})
		played[c.PlayerID] = struct{}{}
	}

	h := model.History{Events: make([]model.Event, 0, len(events))}
	for _, row := range events {
		ev := model.Event{ID: row.ID, Name: row.Name, StartDate: row.StartDate.UTC()}
		for n := 1; n <= row.RoundCount; n++ {
			groups, err := model.GroupPlacements(byRound[row.ID][n])
			if err != nil {
				return model.History{}, &rating.MalformedRoundError{EventID: row.ID, Round: n, Reason: "stored placements", Err: err}
			}
			ev.Rounds = append(ev.Rounds, model.Round{EventID: row.ID, Number: n, Groups: groups})
		}
		h.Events = append(h.Events, ev)
	}

	if len(played) > 0 {
		pids := make([]string, 0, len(played))
		for id := range played {
			pids = append(pids, id)
		}
		sort.Strings(pids)
		var players []playerRow
		if err := db.Where("id IN ?", pids).Order("id").Find(&players).Error; err != nil {
			return model.History{}, fmt.Errorf("%w: load players: %w", ErrStore, err)
		}
		for _, p := range players {
			h.Players = append(h.Players, model.Player{ID: p.ID, Name: p.Name})
		}
	}
	return h, nil
}

func missingIDs(want []string, got []eventRow) []string {
	have := make(map[string]struct{}, len(got))
	for _, e := range got {
		have[e.ID] = struct{}{}
	}
	var missing []string
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// SaveSnapshot stores the current ratings of a run.
func (s *Store) SaveSnapshot(ctx context.Context, res *rating.Result) error {
	if res == nil || len(res.Current) == 0 {
		return nil
	}
	ids := make([]string, 0, len(res.Current))
	for id := range res.Current {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]snapshotRow, len(ids))
	for i, id := range ids {
		rows[i] = snapshotRow{RunID: res.RunID, PlayerID: id, Rating: res.Current[id], Rounds: len(res.Rounds)}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, 500).Error; err != nil {
		return fmt.Errorf("%w: save snapshot %s: %w", ErrStore, res.RunID, err)
	}
	return nil
}

// Snapshot returns the stored ratings of runID.
func (s *Store) Snapshot(ctx context.Context, runID string) (map[string]float64, error) {
	var rows []snapshotRow
	if err := s.db.WithContext(ctx).Where("run_id = ?", runID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: load snapshot %s: %w", ErrStore, runID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: snapshot %s", ErrNotFound, runID)
	}
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[r.PlayerID] = r.Rating
	}
	return out, nil
}

// LatestRunID returns the run id of the most recent snapshot.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var row snapshotRow
	err := s.db.WithContext(ctx).Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: no snapshots", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%w: latest snapshot: %w", ErrStore, err)
	}
	return row.RunID, nil
}
