package service

import (
	"context"

	"github.com/okian/aimtrack/internal/adapters/repository"
	"github.com/okian/aimtrack/internal/domain/benchmark"
	"github.com/okian/aimtrack/internal/domain/energy"
	"github.com/okian/aimtrack/internal/domain/model"
)

// standingsScorer recomputes a player's benchmark energy from their best
// score on each scenario of the pair.
type standingsScorer struct {
	catalog *benchmark.Catalog
	entries *repository.EntryStore
}

func (a *standingsScorer) Standings(ctx context.Context, e model.Entry) ([]model.Standing, error) { //nolint:gocritic // hugeParam: matches worker.Scorer
	placements := a.catalog.Locate(e.Hash)
	out := make([]model.Standing, 0, len(placements))
	for _, p := range placements {
		bestA, _ := a.entries.Best(ctx, e.UserID, p.Benchmark.A.Hash)
		bestB, _ := a.entries.Best(ctx, e.UserID, p.Benchmark.B.Hash)
		out = append(out, model.Standing{
			Board:     p.Division.Board.String(),
			Benchmark: p.Benchmark.ID,
			UserID:    e.UserID,
			Energy:    energy.BenchmarkEnergy(bestA, bestB, p.Benchmark.Pair(p.Division.Tier)),
		})
	}
	return out, nil
}
