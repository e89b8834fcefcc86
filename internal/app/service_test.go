package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/roundelo/internal/adapters/repository"
	service "github.com/okian/roundelo/internal/app"
	"github.com/okian/roundelo/internal/domain/model"
	"github.com/okian/roundelo/internal/domain/rating"
	"github.com/okian/roundelo/internal/domain/types"
	"github.com/okian/roundelo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

type staticSource struct {
	mu      sync.Mutex
	history model.History
	err     error
	loads   int
}

func (s *staticSource) LoadHistory(_ context.Context, _ ...string) (model.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.history, s.err
}

type snapshotRecorder struct {
	runIDs []string
}

func (r *snapshotRecorder) SaveSnapshot(_ context.Context, res *rating.Result) error {
	r.runIDs = append(r.runIDs, res.RunID)
	return nil
}

func fourPlayerHistory() model.History {
	return model.History{
		Players: []model.Player{{ID: "p1", Name: "Ada"}, {ID: "p4", Name: "Dee"}},
		Events: []model.Event{{
			ID:        "open",
			StartDate: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			Rounds: []model.Round{
				{EventID: "open", Number: 1, Groups: []model.TieGroup{{"p1"}, {"p2", "p3"}, {"p4"}}},
				{EventID: "open", Number: 2},
			},
		}},
	}
}

func TestService_Queries(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that has not run yet", t, func() {
		svc := service.New(&staticSource{history: fourPlayerHistory()}, rating.DefaultParams())

		Convey("Then queries report that ratings are not ready", func() {
			_, err := svc.TopN(ctx, 3)
			So(errors.Is(err, types.ErrNotReady), ShouldBeTrue)
			_, err = svc.Rank(ctx, "p1")
			So(errors.Is(err, types.ErrNotReady), ShouldBeTrue)
			_, err = svc.History(ctx, "p1")
			So(errors.Is(err, types.ErrNotReady), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a started service", t, func() {
		snaps := &snapshotRecorder{}
		svc := service.New(&staticSource{history: fourPlayerHistory()}, rating.DefaultParams(), service.WithSnapshots(snaps))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the leaderboard is requested", func() {
			top, err := svc.TopN(ctx, 10)
			So(err, ShouldBeNil)

			Convey("Then players are ordered by rating with names attached", func() {
				So(top, ShouldHaveLength, 4)
				So(top[0].PlayerID, ShouldEqual, "p1")
				So(top[0].Name, ShouldEqual, "Ada")
				So(top[0].Rating, ShouldAlmostEqual, 1012.8, 1e-9)
				So(top[1].PlayerID, ShouldEqual, "p2")
				So(top[2].PlayerID, ShouldEqual, "p3")
				So(top[3].Rank, ShouldEqual, 4)
			})
		})

		Convey("When a rank is requested", func() {
			e, err := svc.Rank(ctx, "p4")
			So(err, ShouldBeNil)
			So(e.Rank, ShouldEqual, 4)
			So(e.Name, ShouldEqual, "Dee")

			_, err = svc.Rank(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a history is requested", func() {
			h, err := svc.History(ctx, "p1")
			So(err, ShouldBeNil)

			Convey("Then each point is labelled with its round", func() {
				So(h.Initial, ShouldEqual, 1000)
				So(h.Points, ShouldHaveLength, 2)
				So(h.Points[0].EventID, ShouldEqual, "open")
				So(h.Points[1].Round, ShouldEqual, 2)
				So(h.Points[1].Rating, ShouldEqual, h.Points[0].Rating)
			})
		})

		Convey("When a bad limit is requested", func() {
			_, err := svc.TopN(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("Then stats and the snapshot reflect the run", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["runs"], ShouldEqual, 1)
			So(stats["rounds"], ShouldEqual, 2)
			So(stats["players"], ShouldEqual, 4)
			So(snaps.runIDs, ShouldHaveLength, 1)
			So(stats["runId"], ShouldEqual, snaps.runIDs[0])
		})
	})
}

func TestService_Recompute(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with published ratings", t, func() {
		src := &staticSource{history: fourPlayerHistory()}
		svc := service.New(src, rating.DefaultParams())
		So(svc.Start(ctx), ShouldBeNil)
		before, err := svc.TopN(ctx, 4)
		So(err, ShouldBeNil)

		Convey("When the next history is malformed", func() {
			h := fourPlayerHistory()
			h.Events[0].Rounds[1].Groups = []model.TieGroup{{"p1"}, {}}
			src.history = h

			err := svc.Recompute(ctx)

			Convey("Then the previous ratings stay published", func() {
				So(errors.Is(err, rating.ErrMalformedRound), ShouldBeTrue)
				after, err := svc.TopN(ctx, 4)
				So(err, ShouldBeNil)
				So(after, ShouldResemble, before)
				So(svc.GetStats()["lastErrorKind"], ShouldEqual, "malformed_round")
			})
		})

		Convey("When the history grows", func() {
			h := fourPlayerHistory()
			h.Events[0].Rounds = append(h.Events[0].Rounds, model.Round{EventID: "open", Number: 3, Groups: []model.TieGroup{{"p4"}, {"p1"}}})
			src.history = h

			So(svc.Recompute(ctx), ShouldBeNil)

			Convey("Then the new run replaces the old one", func() {
				hist, err := svc.History(ctx, "p4")
				So(err, ShouldBeNil)
				So(hist.Points, ShouldHaveLength, 3)
				So(svc.GetStats()["runs"], ShouldEqual, 2)
			})
		})
	})

	Convey("Given a source that fails", t, func() {
		svc := service.New(&staticSource{err: errors.New("database locked")}, rating.DefaultParams())

		Convey("Then Start fails and the service stays stopped", func() {
			So(svc.Start(ctx), ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given concurrent readers during recomputation", t, func() {
		svc := service.New(&staticSource{history: fourPlayerHistory()}, rating.DefaultParams())
		So(svc.Start(ctx), ShouldBeNil)

		var wg sync.WaitGroup
		failures := make(chan error, 100)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 25; j++ {
					if _, err := svc.TopN(ctx, 2); err != nil {
						failures <- err
					}
				}
			}()
		}
		for i := 0; i < 5; i++ {
			So(svc.Recompute(ctx), ShouldBeNil)
		}
		wg.Wait()
		close(failures)

		Convey("Then every read sees a complete result", func() {
			So(len(failures), ShouldEqual, 0)
		})
	})
}
