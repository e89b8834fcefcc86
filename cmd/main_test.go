package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/roundelo/internal/adapters/sqlstore"
	"github.com/okian/roundelo/internal/config"
	"github.com/okian/roundelo/internal/domain/model"
	"github.com/okian/roundelo/internal/domain/types"
	"github.com/okian/roundelo/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func seededStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "roundelo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ev := model.Event{
		ID:        "opener",
		Name:      "Season Opener",
		StartDate: time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC),
		Rounds: []model.Round{
			{EventID: "opener", Number: 1, Groups: []model.TieGroup{{"a"}, {"b"}, {"c"}}},
		},
	}
	players := []model.Player{{ID: "a", Name: "Ada"}, {ID: "b", Name: "Bo"}, {ID: "c", Name: "Cy"}}
	if err := store.SaveEvent(context.Background(), ev, players); err != nil {
		t.Fatalf("save event: %v", err)
	}
	return store
}

func TestServerWiring(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given the server wired over a seeded placement store", t, func() {
		cfg := config.New()
		store := seededStore(t)

		svc, err := newService(ctx, cfg, store)
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(ctx, svc, cfg))
		defer srv.Close()

		convey.Convey("When the leaderboard is requested", func() {
			resp, err := http.Get(srv.URL + "/leaderboard?limit=3")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			var entries []types.Entry
			convey.So(json.NewDecoder(resp.Body).Decode(&entries), convey.ShouldBeNil)

			convey.Convey("Then the winner leads with display names attached", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(entries, convey.ShouldHaveLength, 3)
				convey.So(entries[0].PlayerID, convey.ShouldEqual, "a")
				convey.So(entries[0].Name, convey.ShouldEqual, "Ada")
				convey.So(entries[0].Rating, convey.ShouldBeGreaterThan, cfg.InitialRating)
			})
		})

		convey.Convey("When the OpenAPI document is requested", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			resp.Body.Close()

			convey.Convey("Then it is served", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When the run finished", func() {
			runID, err := store.LatestRunID(ctx)

			convey.Convey("Then its snapshot was persisted", func() {
				convey.So(err, convey.ShouldBeNil)
				snap, err := store.Snapshot(ctx, runID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(snap, convey.ShouldHaveLength, 3)
			})
		})
	})

	convey.Convey("Given invalid rating settings", t, func() {
		cfg := config.New()
		cfg.FSMCurve = "cubic"

		convey.Convey("Then the service is not built", func() {
			_, err := newService(ctx, cfg, seededStore(t))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestBackgroundLoops(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then the background loops return", func() {
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				watchReload(ctx, nil)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("background loops did not stop")
			}
		})

		convey.Convey("And a metrics refresh does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
