package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/aimtrack/internal/domain/benchmark"
	"github.com/okian/aimtrack/internal/domain/energy"
	"github.com/okian/aimtrack/internal/domain/model"
	"github.com/okian/aimtrack/internal/domain/progress"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	pasu    = "830238e82c367ad2ba40df1da9968131"
	popcorn = "86f9526f57828ad981f6c93b35811f94"
)

func at(day, hour int) int64 {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC).UnixNano()
}

func TestParseDateQuery(t *testing.T) {
	now := time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC)

	Convey("Given date queries", t, func() {
		Convey("When the query is empty or all", func() {
			for _, q := range []string{"", "all"} {
				r, err := progress.ParseDateQuery(q, now)
				So(err, ShouldBeNil)
				So(r, ShouldResemble, progress.All())
			}
		})

		Convey("When the query is a single date", func() {
			r, err := progress.ParseDateQuery("09-03-2024", now)
			So(err, ShouldBeNil)

			Convey("Then it covers that whole day", func() {
				So(r.From, ShouldEqual, at(9, 0))
				So(r.To, ShouldEqual, at(10, 0))
				So(r.Contains(at(9, 23)), ShouldBeTrue)
				So(r.Contains(at(8, 23)), ShouldBeFalse)
			})

			Convey("Then unpadded dates parse the same", func() {
				r2, err := progress.ParseDateQuery("9-3-2024", now)
				So(err, ShouldBeNil)
				So(r2, ShouldResemble, r)
			})
		})

		Convey("When the query is a closed range", func() {
			r, err := progress.ParseDateQuery("01-03-2024..09-03-2024", now)
			So(err, ShouldBeNil)
			So(r.From, ShouldEqual, at(1, 0))
			So(r.To, ShouldEqual, at(9, 0))
		})

		Convey("When the start is open", func() {
			r, err := progress.ParseDateQuery("..09-03-2024", now)
			So(err, ShouldBeNil)
			So(r.From, ShouldEqual, time.Date(2005, time.January, 1, 0, 0, 0, 0, time.UTC).UnixNano())
			So(r.To, ShouldEqual, at(9, 0))
		})

		Convey("When the end is open", func() {
			r, err := progress.ParseDateQuery("01-03-2024..", now)
			So(err, ShouldBeNil)
			So(r.From, ShouldEqual, at(1, 0))
			So(r.To, ShouldEqual, now.Add(24*time.Hour).UnixNano())
		})

		Convey("When the query has more than two dates", func() {
			_, err := progress.ParseDateQuery("01-03-2024..05-03-2024..09-03-2024", now)
			So(errors.Is(err, progress.ErrInvalidDateQuery), ShouldBeTrue)
		})

		Convey("When a date is malformed", func() {
			for _, q := range []string{"2024-03-09", "yesterday", "01-03-2024..soon"} {
				_, err := progress.ParseDateQuery(q, now)
				So(errors.Is(err, progress.ErrInvalidDateQuery), ShouldBeTrue)
			}
		})
	})
}

func TestDailyMax(t *testing.T) {
	Convey("Given entries spread over days", t, func() {
		entries := []model.Entry{
			{Hash: pasu, Score: 700, CTime: at(2, 9)},
			{Hash: pasu, Score: 760, CTime: at(1, 22)},
			{Hash: pasu, Score: 720, CTime: at(1, 8)},
			{Hash: popcorn, Score: 900, CTime: at(2, 1)},
		}

		daily := progress.DailyMax(entries)

		Convey("Then each hash keeps one best score per day in order", func() {
			So(len(daily[pasu]), ShouldEqual, 2)
			So(daily[pasu][0].Day.Equal(time.Unix(0, at(1, 0))), ShouldBeTrue)
			So(daily[pasu][0].Score, ShouldEqual, 760)
			So(daily[pasu][1].Score, ShouldEqual, 700)
			So(daily[popcorn], ShouldHaveLength, 1)
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given the intermediate division and a player's history", t, func() {
		c, err := benchmark.Default()
		So(err, ShouldBeNil)
		div, err := c.Division(5, energy.Intermediate)
		So(err, ShouldBeNil)

		entries := []model.Entry{
			{Hash: pasu, Score: 700, CTime: at(1, 10)},
			{Hash: pasu, Score: 760, CTime: at(1, 11)},
			{Hash: popcorn, Score: 950, CTime: at(2, 10)},
			{Hash: pasu, Score: 840, CTime: at(3, 10)},
			{Hash: popcorn, Score: 790, CTime: at(3, 11)},
			{Hash: "not-in-division", Score: 99999, CTime: at(3, 12)},
		}

		ev := progress.NewEvaluator(progress.WithParallelism(2))

		Convey("When evaluating", func() {
			report, err := ev.Evaluate(context.Background(), div, entries)
			So(err, ShouldBeNil)

			Convey("Then every benchmark of the division is reported", func() {
				So(report.Board, ShouldEqual, "vt-s5-intermediate")
				So(len(report.Benchmarks), ShouldEqual, 9)
			})

			Convey("Then dynamic clicking follows the daily series", func() {
				bp := report.Benchmarks[0]
				So(bp.Benchmark, ShouldEqual, "dynamic-clicking")
				So(len(bp.Series), ShouldEqual, 3)
				So(bp.Series[0].Energy, ShouldEqual, 500)
				So(bp.Series[1].Energy, ShouldEqual, 800)
				So(bp.Series[2].Energy, ShouldEqual, 600)
				So(bp.Current, ShouldEqual, 600)
				So(bp.Peak, ShouldEqual, 800)
				So(bp.RankName, ShouldEqual, "Master")
			})

			Convey("Then untouched benchmarks are empty and unranked", func() {
				bp := report.Benchmarks[8]
				So(bp.Series, ShouldBeEmpty)
				So(bp.Peak, ShouldEqual, 0)
				So(bp.RankName, ShouldEqual, energy.Unranked)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := ev.Evaluate(ctx, div, entries)

			Convey("Then the evaluation fails with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
