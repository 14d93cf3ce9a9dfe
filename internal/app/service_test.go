package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	service "github.com/okian/aimtrack/internal/app"
	"github.com/okian/aimtrack/internal/domain/benchmark"
	"github.com/okian/aimtrack/internal/domain/model"
	"github.com/okian/aimtrack/internal/domain/progress"
	"github.com/okian/aimtrack/internal/domain/types"
	"github.com/okian/aimtrack/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	pasu    = "830238e82c367ad2ba40df1da9968131"
	popcorn = "86f9526f57828ad981f6c93b35811f94"
	board   = "vt-s5-intermediate"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not started", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Size(), ShouldEqual, 0)
		})

		Convey("Then every operation reports that it is not started", func() {
			ctx := context.Background()
			_, err := svc.Submit(ctx, model.Entry{UserID: "u1", Hash: pasu})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.LatestTimestamp(ctx, "u1")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.TopN(ctx, board, "dynamic-clicking", 10)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(3),
			service.WithQueueSize(10),
			service.WithDedupeSize(20),
			service.WithProgressParallelism(2),
		)

		Convey("Then the stats reflect them", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 3)
			So(stats["queueSize"], ShouldEqual, 10)
			So(stats["dedupeSize"], ShouldEqual, 20)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then starting again is a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.Stop(ctx), ShouldBeNil)
		})

		Convey("When it is stopped twice", func() {
			first := svc.Stop(ctx)
			second := svc.Stop(ctx)

			Convey("Then both calls succeed and it reports stopped", func() {
				So(first, ShouldBeNil)
				So(second, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_StopDrainsQueue(t *testing.T) {
	Convey("Given a service whose start context is cancelled with uploads still queued", t, func() {
		const n = 20000
		startCtx, cancelStart := context.WithCancel(context.Background())
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithQueueSize(n),
			service.WithDedupeSize(n),
		)
		So(svc.Start(startCtx), ShouldBeNil)

		ctx := context.Background()
		accepted := 0
		for i := 0; i < n; i++ {
			status, err := svc.Submit(ctx, model.Entry{
				UserID: fmt.Sprintf("p%d", i%50),
				Hash:   pasu,
				Score:  700 + float64(i%300),
				CTime:  int64(i + 1),
			})
			if err == nil && status == types.SubmitAccepted {
				accepted++
			}
		}
		cancelStart()

		stopCtx, cancelStop := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancelStop()
		err := svc.Stop(stopCtx)

		Convey("Then Stop stores every accepted entry before returning", func() {
			So(err, ShouldBeNil)
			So(accepted, ShouldEqual, n)
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.GetStats()["totalEntries"], ShouldEqual, accepted)
			So(svc.GetStats()["totalPlayers"], ShouldEqual, 50)
		})
	})
}

func TestService_Energy(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When scoring a known scenario", func() {
			r, err := svc.Energy(ctx, board, pasu, 840)
			So(err, ShouldBeNil)

			Convey("Then the reading names the scenario and its benchmark", func() {
				So(r.Energy, ShouldEqual, 600)
				So(r.Board, ShouldEqual, board)
				So(r.Scenario, ShouldEqual, "VT Pasu Intermediate S5")
				So(r.Benchmark, ShouldEqual, "dynamic-clicking")
				So(r.RankName, ShouldEqual, "Diamond")
			})
		})

		Convey("When the board or scenario is unknown", func() {
			_, err := svc.Energy(ctx, "vt-s9-intermediate", pasu, 840)
			So(errors.Is(err, benchmark.ErrSeasonNotFound), ShouldBeTrue)
			_, err = svc.Energy(ctx, "vt-s5-expert", pasu, 840)
			So(errors.Is(err, benchmark.ErrDifficultyNotFound), ShouldBeTrue)
			_, err = svc.Energy(ctx, "season5", pasu, 840)
			So(errors.Is(err, benchmark.ErrInvalidBoard), ShouldBeTrue)
			_, err = svc.Energy(ctx, board, "nope", 840)
			So(errors.Is(err, benchmark.ErrScenarioNotFound), ShouldBeTrue)
			_, err = svc.Energy(ctx, "vt-s5-novice", pasu, 840)
			So(errors.Is(err, benchmark.ErrScenarioNotFound), ShouldBeTrue)
		})

		Convey("When a leaderboard benchmark is unknown", func() {
			_, err := svc.TopN(ctx, board, "no-such-benchmark", 10)
			So(errors.Is(err, benchmark.ErrBenchmarkNotFound), ShouldBeTrue)
			_, err = svc.Rank(ctx, board, "no-such-benchmark", "u1")
			So(errors.Is(err, benchmark.ErrBenchmarkNotFound), ShouldBeTrue)
		})

		Convey("When a date query is malformed", func() {
			_, err := svc.Entries(ctx, "u1", board, "yesterday")
			So(errors.Is(err, progress.ErrInvalidDateQuery), ShouldBeTrue)
		})
	})
}
