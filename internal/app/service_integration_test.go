package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	service "github.com/okian/aimtrack/internal/app"
	"github.com/okian/aimtrack/internal/adapters/repository"
	"github.com/okian/aimtrack/internal/domain/model"
	"github.com/okian/aimtrack/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d, hour int) int64 {
	return time.Date(2024, time.March, d, hour, 0, 0, 0, time.UTC).UnixNano()
}

// eventually polls cond until it holds or a few seconds pass.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// settled reports whether the workers stored n entries and user reached
// want energy on the dynamic clicking leaderboard.
func settled(ctx context.Context, svc *service.Service, n int, user string, want float64) func() bool {
	return func() bool {
		if total, _ := svc.GetStats()["totalEntries"].(int); total < n {
			return false
		}
		r, err := svc.Rank(ctx, board, "dynamic-clicking", user)
		return err == nil && r.Energy == want
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
			service.WithClock(func() time.Time { return time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC) }),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When a player uploads a history", func() {
			history := []model.Entry{
				{UserID: "alice", Scenario: "VT Pasu Intermediate S5", Hash: pasu, Score: 760, CTime: day(1, 10)},
				{UserID: "alice", Scenario: "VT Popcorn Intermediate S5", Hash: popcorn, Score: 950, CTime: day(2, 10)},
				{UserID: "alice", Scenario: "VT Pasu Intermediate S5", Hash: pasu, Score: 840, CTime: day(3, 10)},
				{UserID: "bob", Scenario: "VT Pasu Intermediate S5", Hash: pasu, Score: 760, CTime: day(3, 11)},
			}
			for _, e := range history {
				status, err := svc.Submit(ctx, e)
				So(err, ShouldBeNil)
				So(status, ShouldEqual, types.SubmitAccepted)
			}
			So(eventually(settled(ctx, svc, len(history), "alice", 800)), ShouldBeTrue)
			So(eventually(settled(ctx, svc, len(history), "bob", 500)), ShouldBeTrue)

			Convey("Then re-uploading an attempt is a duplicate", func() {
				status, err := svc.Submit(ctx, history[0])
				So(err, ShouldBeNil)
				So(status, ShouldEqual, types.SubmitDuplicate)
				So(status.String(), ShouldEqual, "duplicate")
			})

			Convey("Then entries are listed by date query", func() {
				all, err := svc.Entries(ctx, "alice", board, "all")
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 3)
				So(all[0].ID, ShouldNotBeEmpty)

				one, err := svc.Entries(ctx, "alice", board, "02-03-2024")
				So(err, ShouldBeNil)
				So(one, ShouldHaveLength, 1)
				So(one[0].Hash, ShouldEqual, popcorn)

				tail, err := svc.Entries(ctx, "alice", board, "02-03-2024..")
				So(err, ShouldBeNil)
				So(tail, ShouldHaveLength, 2)

				other, err := svc.Entries(ctx, "alice", "vt-s5-novice", "all")
				So(err, ShouldBeNil)
				So(other, ShouldBeEmpty)
			})

			Convey("Then the latest timestamp is the newest ctime", func() {
				ts, err := svc.LatestTimestamp(ctx, "alice")
				So(err, ShouldBeNil)
				So(ts, ShouldEqual, day(3, 10))
				ts, _ = svc.LatestTimestamp(ctx, "nobody")
				So(ts, ShouldEqual, 0)
			})

			Convey("Then the leaderboard ranks the best benchmark energy", func() {
				top, err := svc.TopN(ctx, board, "dynamic-clicking", 10)
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 2)
				So(top[0].PlayerID, ShouldEqual, "alice")
				So(top[0].Energy, ShouldEqual, 800)
				So(top[1].PlayerID, ShouldEqual, "bob")
				So(top[1].Energy, ShouldEqual, 500)

				r, err := svc.Rank(ctx, board, "dynamic-clicking", "bob")
				So(err, ShouldBeNil)
				So(r.Rank, ShouldEqual, 2)

				_, err = svc.Rank(ctx, board, "dynamic-clicking", "carol")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then progress follows the daily series", func() {
				report, err := svc.Progress(ctx, "alice", board)
				So(err, ShouldBeNil)
				So(report.Board, ShouldEqual, board)
				bp := report.Benchmarks[0]
				So(bp.Benchmark, ShouldEqual, "dynamic-clicking")
				So(len(bp.Series), ShouldEqual, 3)
				So(bp.Peak, ShouldEqual, 800)
				So(bp.Current, ShouldEqual, 800)
			})

			Convey("Then the stats count players and entries", func() {
				stats := svc.GetStats()
				So(stats["totalEntries"], ShouldEqual, 4)
				So(stats["totalPlayers"], ShouldEqual, 2)
				So(stats["leaderboards"], ShouldEqual, 1)
			})
		})

		Convey("When an entry has no user", func() {
			_, err := svc.Submit(ctx, model.Entry{Hash: pasu, Score: 1})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidEntry), ShouldBeTrue)
			})
		})

		Convey("When many players upload concurrently", func() {
			const players = 20
			errs := make(chan error, players)
			for i := 0; i < players; i++ {
				go func(i int) {
					_, err := svc.Submit(ctx, model.Entry{
						UserID: fmt.Sprintf("p%02d", i),
						Hash:   popcorn,
						Score:  700 + float64(i*10),
						CTime:  day(5, 12),
					})
					errs <- err
				}(i)
			}
			for i := 0; i < players; i++ {
				So(<-errs, ShouldBeNil)
			}
			So(eventually(settled(ctx, svc, players, "p19", 725)), ShouldBeTrue)

			Convey("Then the best player leads the leaderboard", func() {
				top, err := svc.TopN(ctx, board, "dynamic-clicking", 3)
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 3)
				So(top[0].PlayerID, ShouldEqual, "p19")
			})
		})
	})
}
