package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/roundelo/internal/domain/rating"
	"github.com/okian/roundelo/internal/sweep"
	"github.com/okian/roundelo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const season = `
events:
  - id: opener
    start_date: "2024-01-06"
    rounds:
      - number: 1
        placements:
          - {player: a, rank: 1}
          - {player: b, rank: 2}
          - {player: c, rank: 2}
`

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func TestReport(t *testing.T) {
	ctx := context.Background()

	Convey("Given a results file", t, func() {
		path := filepath.Join(t.TempDir(), "season.yaml")
		So(os.WriteFile(path, []byte(season), 0o600), ShouldBeNil)

		h, err := loadHistory(ctx, "", path)
		So(err, ShouldBeNil)
		So(h.RoundCount(), ShouldEqual, 1)

		Convey("When a sweep with one bad K is reported", func() {
			jobs := sweep.KFactorJobs(rating.DefaultParams(), []float64{16, -1})
			outcomes := sweep.NewRunner(sweep.WithWorkers(2)).Run(ctx, h, jobs)

			var buf bytes.Buffer
			failed := writeReport(&buf, outcomes)
			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

			Convey("Then every job gets a row and the failure is counted", func() {
				So(failed, ShouldEqual, 1)
				So(lines, ShouldHaveLength, 3)
				So(lines[0], ShouldStartWith, "JOB")
				So(lines[1], ShouldStartWith, "k=16")
				So(lines[1], ShouldContainSubstring, " a ")
				So(lines[2], ShouldContainSubstring, "k=-1")
			})
		})
	})
}
