package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/aimtrack/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an entry store", t, func() {
		s := NewEntryStore()

		Convey("When entries arrive out of order", func() {
			for _, e := range []model.Entry{
				{UserID: "u1", Hash: "a", Score: 700, CTime: 30},
				{UserID: "u1", Hash: "a", Score: 760, CTime: 10},
				{UserID: "u1", Hash: "b", Score: 900, CTime: 20},
				{UserID: "u2", Hash: "a", Score: 100, CTime: 5},
			} {
				ok, err := s.Insert(ctx, e)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			}

			Convey("Then listing returns them by ctime", func() {
				list := s.List(ctx, "u1", nil, 0, 100)
				So(len(list), ShouldEqual, 3)
				So(list[0].CTime, ShouldEqual, 10)
				So(list[1].CTime, ShouldEqual, 20)
				So(list[2].CTime, ShouldEqual, 30)
			})

			Convey("Then listing filters by hash and inclusive range", func() {
				So(s.List(ctx, "u1", []string{"a"}, 0, 100), ShouldHaveLength, 2)
				So(s.List(ctx, "u1", nil, 10, 20), ShouldHaveLength, 2)
				So(s.List(ctx, "u1", []string{}, 0, 100), ShouldBeEmpty)
				So(s.List(ctx, "nobody", nil, 0, 100), ShouldBeEmpty)
			})

			Convey("Then latest and best reflect the history", func() {
				So(s.Latest(ctx, "u1"), ShouldEqual, 30)
				So(s.Latest(ctx, "nobody"), ShouldEqual, 0)
				best, ok := s.Best(ctx, "u1", "a")
				So(ok, ShouldBeTrue)
				So(best, ShouldEqual, 760)
				_, ok = s.Best(ctx, "u2", "b")
				So(ok, ShouldBeFalse)
			})

			Convey("Then counts cover entries and players", func() {
				So(s.Count(ctx), ShouldEqual, 4)
				So(s.Players(ctx), ShouldEqual, 2)
			})

			Convey("Then re-inserting the same attempt is ignored", func() {
				ok, err := s.Insert(ctx, model.Entry{UserID: "u1", Hash: "a", Score: 9999, CTime: 30})
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				best, _ := s.Best(ctx, "u1", "a")
				So(best, ShouldEqual, 760)
			})
		})

		Convey("When an entry has no user", func() {
			_, err := s.Insert(ctx, model.Entry{Hash: "a"})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrInvalidEntry), ShouldBeTrue)
			})
		})
	})
}

func TestBoard(t *testing.T) {
	ctx := context.Background()

	Convey("Given a leaderboard", t, func() {
		b := NewBoard()

		Convey("When players post energies", func() {
			b.UpdateBest(ctx, "carol", 700)
			b.UpdateBest(ctx, "alice", 812.5)
			b.UpdateBest(ctx, "bob", 700)
			b.UpdateBest(ctx, "dave", 150)

			Convey("Then TopN is ordered by energy then id with dense ranks", func() {
				top, err := b.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 4)
				So(top[0].PlayerID, ShouldEqual, "alice")
				So(top[0].Rank, ShouldEqual, 1)
				So(top[0].RankName, ShouldEqual, "Master")
				So(top[1].PlayerID, ShouldEqual, "bob")
				So(top[2].PlayerID, ShouldEqual, "carol")
				So(top[1].Rank, ShouldEqual, 2)
				So(top[2].Rank, ShouldEqual, 2)
				So(top[3].Rank, ShouldEqual, 3)
			})

			Convey("Then TopN honours the limit", func() {
				top, err := b.TopN(ctx, 2)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 2)
			})

			Convey("Then Rank matches TopN", func() {
				r, err := b.Rank(ctx, "carol")
				So(err, ShouldBeNil)
				So(r.Rank, ShouldEqual, 2)
				So(r.Energy, ShouldEqual, 700)
				r, _ = b.Rank(ctx, "dave")
				So(r.Rank, ShouldEqual, 3)
			})

			Convey("Then a lower energy does not replace the best", func() {
				updated, err := b.UpdateBest(ctx, "alice", 500)
				So(err, ShouldBeNil)
				So(updated, ShouldBeFalse)
				So(b.Count(ctx), ShouldEqual, 4)
			})

			Convey("Then a higher energy moves the player up", func() {
				updated, _ := b.UpdateBest(ctx, "dave", 900)
				So(updated, ShouldBeTrue)
				r, _ := b.Rank(ctx, "dave")
				So(r.Rank, ShouldEqual, 1)
				So(nsize(b.root), ShouldEqual, 4)
			})

			Convey("Then ranks close up once a shared energy is left empty", func() {
				So(nsize(b.levels), ShouldEqual, 3)
				b.UpdateBest(ctx, "bob", 900)
				r, _ := b.Rank(ctx, "dave")
				So(r.Rank, ShouldEqual, 4)
				b.UpdateBest(ctx, "carol", 1000)
				So(nsize(b.levels), ShouldEqual, 4)
				r, _ = b.Rank(ctx, "dave")
				So(r.Rank, ShouldEqual, 4)
				r, _ = b.Rank(ctx, "alice")
				So(r.Rank, ShouldEqual, 3)
			})

			Convey("Then every Rank agrees with the TopN row", func() {
				top, err := b.TopN(ctx, 10)
				So(err, ShouldBeNil)
				for _, want := range top {
					got, err := b.Rank(ctx, want.PlayerID)
					So(err, ShouldBeNil)
					So(got, ShouldResemble, want)
				}
			})
		})

		Convey("When asking for an unknown player or a bad limit", func() {
			_, err := b.Rank(ctx, "ghost")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			_, err = b.TopN(ctx, 0)
			So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
		})
	})

	Convey("Given many concurrent updates", t, func() {
		b := NewBoard()
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					_, _ = b.UpdateBest(ctx, fmt.Sprintf("p%d", i), float64(i*8+w))
				}
			}(w)
		}
		wg.Wait()

		Convey("Then every player keeps the best energy and the tree stays consistent", func() {
			So(b.Count(ctx), ShouldEqual, 200)
			So(nsize(b.root), ShouldEqual, 200)
			So(nsize(b.levels), ShouldEqual, len(b.counts))
			r, err := b.Rank(ctx, "p199")
			So(err, ShouldBeNil)
			So(r.Rank, ShouldEqual, 1)
			So(r.Energy, ShouldEqual, 199*8+7)
		})
	})
}

func TestLeaderboards(t *testing.T) {
	ctx := context.Background()

	Convey("Given the leaderboard registry", t, func() {
		l := NewLeaderboards()
		l.UpdateBest(ctx, model.Standing{Board: "vt-s5-novice", Benchmark: "dynamic-clicking", UserID: "u1", Energy: 250})
		l.UpdateBest(ctx, model.Standing{Board: "vt-s5-novice", Benchmark: "static-clicking", UserID: "u1", Energy: 120})

		Convey("Then each benchmark is ranked separately", func() {
			So(l.Count(ctx, "vt-s5-novice", "dynamic-clicking"), ShouldEqual, 1)
			So(l.Boards(), ShouldResemble, []string{"vt-s5-novice/dynamic-clicking", "vt-s5-novice/static-clicking"})
			r, err := l.Rank(ctx, "vt-s5-novice", "static-clicking", "u1")
			So(err, ShouldBeNil)
			So(r.Energy, ShouldEqual, 120)
		})

		Convey("Then an untouched benchmark is empty", func() {
			top, err := l.TopN(ctx, "vt-s5-advanced", "dynamic-clicking", 5)
			So(err, ShouldBeNil)
			So(top, ShouldBeEmpty)
			So(l.Count(ctx, "vt-s5-advanced", "dynamic-clicking"), ShouldEqual, 0)
			_, err = l.Rank(ctx, "vt-s5-advanced", "dynamic-clicking", "u1")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})
}

func BenchmarkBoardUpdateBest(b *testing.B) {
	ctx := context.Background()
	board := NewBoard()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = board.UpdateBest(ctx, fmt.Sprintf("p%d", i%10000), float64(i%1300))
	}
}
