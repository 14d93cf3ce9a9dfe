// Package progress turns a player's entry history into per-benchmark energy
// over time.
package progress

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/aimtrack/internal/domain/benchmark"
	"github.com/okian/aimtrack/internal/domain/energy"
	"github.com/okian/aimtrack/internal/domain/model"
)

// DayMax is the best score of a scenario on one UTC day.
type DayMax struct {
	Day   time.Time
	Score float64
}

// DailyMax groups entries by scenario hash and UTC day and keeps the best
// score of each day. Days are sorted ascending.
func DailyMax(entries []model.Entry) map[string][]DayMax {
	best := make(map[string]map[int64]float64)
	for _, e := range entries {
		days, ok := best[e.Hash]
		if !ok {
			days = make(map[int64]float64)
			best[e.Hash] = days
		}
		d := e.Time().Truncate(day).UnixNano()
		if cur, seen := days[d]; !seen || e.Score > cur {
			days[d] = e.Score
		}
	}

	out := make(map[string][]DayMax, len(best))
	for hash, days := range best {
		series := make([]DayMax, 0, len(days))
		for d, s := range days {
			series = append(series, DayMax{Day: time.Unix(0, d).UTC(), Score: s})
		}
		sort.Slice(series, func(i, j int) bool { return series[i].Day.Before(series[j].Day) })
		out[hash] = series
	}
	return out
}

// Point is a benchmark's energy at the end of a day.
type Point struct {
	Day    time.Time `json:"day"`
	Energy float64   `json:"energy"`
}

// BenchmarkProgress is the energy history of one benchmark.
type BenchmarkProgress struct {
	Benchmark string  `json:"benchmark"`
	Series    []Point `json:"series"`
	// Current is the energy of the most recent day played.
	Current float64 `json:"current"`
	// Peak is the highest energy ever reached.
	Peak     float64 `json:"peak"`
	RankName string  `json:"rank_name"`
}

// Report is a player's progress on every benchmark of a division.
type Report struct {
	Board      string              `json:"board"`
	Benchmarks []BenchmarkProgress `json:"benchmarks"`
}

// Evaluator computes progress reports.
type Evaluator struct {
	parallelism int
}

// NewEvaluator creates an evaluator. By default scenario energies are
// computed on up to GOMAXPROCS goroutines.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{parallelism: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(e)
	}
	if e.parallelism <= 0 {
		e.parallelism = 1
	}
	return e
}

type scenarioDays struct {
	days     []DayMax
	energies []float64
}

// Evaluate scores the entries of div's scenarios day by day. On each day a
// benchmark takes the better of its two scenarios, where a scenario not
// played that day keeps the energy of the last day it was played.
// Entries for other scenarios are ignored.
func (ev *Evaluator) Evaluate(ctx context.Context, div *benchmark.Division, entries []model.Entry) (Report, error) {
	daily := DailyMax(entries)

	scored := make(map[string]*scenarioDays, len(div.Scenarios))
	for _, s := range div.Scenarios {
		days := daily[s.Hash]
		scored[s.Hash] = &scenarioDays{days: days, energies: make([]float64, len(days))}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ev.parallelism)
	for _, s := range div.Scenarios {
		sd := scored[s.Hash]
		th := s.Thresholds
		for i, dm := range sd.days {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				sd.energies[i] = div.Tier.Score(dm.Score, th)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Board: div.Board.String(), Benchmarks: make([]BenchmarkProgress, 0, len(div.Benchmarks))}
	for _, b := range div.Benchmarks {
		report.Benchmarks = append(report.Benchmarks, combine(div.Tier, b.ID, scored[b.A.Hash], scored[b.B.Hash]))
	}
	return report, nil
}

// combine merges the two scenario day series of a benchmark.
func combine(tier energy.Tier, id string, a, b *scenarioDays) BenchmarkProgress {
	bp := BenchmarkProgress{Benchmark: id, Series: []Point{}}
	var i, j int
	var ea, eb float64
	for i < len(a.days) || j < len(b.days) {
		var d time.Time
		switch {
		case j >= len(b.days) || (i < len(a.days) && a.days[i].Day.Before(b.days[j].Day)):
			d = a.days[i].Day
		default:
			d = b.days[j].Day
		}
		if i < len(a.days) && a.days[i].Day.Equal(d) {
			ea = a.energies[i]
			i++
		}
		if j < len(b.days) && b.days[j].Day.Equal(d) {
			eb = b.energies[j]
			j++
		}
		e := tier.Combine(ea, eb)
		bp.Series = append(bp.Series, Point{Day: d, Energy: e})
		bp.Current = e
		if e > bp.Peak {
			bp.Peak = e
		}
	}
	bp.RankName = energy.RankName(bp.Peak)
	return bp
}
