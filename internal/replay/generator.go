package replay

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/aimtrack/internal/domain/benchmark"
)

// Synthesize builds n attempts spread across the scenarios of div, one every
// few minutes from start. Scores wander between just below the first
// threshold and just above the last so the history crosses every rank.
func Synthesize(div *benchmark.Division, n int, start time.Time, rng *rand.Rand) []Entry {
	if n <= 0 || len(div.Scenarios) == 0 {
		return nil
	}
	out := make([]Entry, n)
	at := start
	for i := range out {
		sc := div.Scenarios[rng.IntN(len(div.Scenarios))]
		lo := sc.Thresholds[0] * 0.8
		hi := sc.Thresholds[3] * 1.05
		at = at.Add(time.Duration(1+rng.IntN(15)) * time.Minute)
		out[i] = Entry{
			ID:       uuid.NewString(),
			Scenario: sc.Name,
			Hash:     sc.Hash,
			Score:    lo + rng.Float64()*(hi-lo),
			CTime:    at.UnixNano(),
		}
	}
	return out
}
