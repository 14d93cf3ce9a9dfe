package energy

import (
	"fmt"
	"math"
	"strings"
)

// Difficulty labels a benchmark tier.
type Difficulty string

// Supported difficulties, lowest first.
const (
	Novice       Difficulty = "novice"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// ceilingHeadroom is how far above e4 a tier may report before the next
// tier's band starts.
const ceilingHeadroom = 99

// Tier is the energy configuration of one difficulty.
type Tier struct {
	Difficulty Difficulty
	Band       Band
	// PrevEnergy anchors the extrapolated segment below the first threshold.
	PrevEnergy float64
	// Capped marks the top tier, whose scores saturate at MaxEnergy.
	Capped bool
}

var tiers = [...]Tier{
	{Difficulty: Novice, Band: Band{100, 200, 300, 400}, PrevEnergy: 0},
	{Difficulty: Intermediate, Band: Band{500, 600, 700, 800}, PrevEnergy: 400},
	{Difficulty: Advanced, Band: Band{900, 1000, 1100, 1200}, PrevEnergy: 800, Capped: true},
}

// Tiers returns every tier ordered from lowest to highest.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers[:])
	return out
}

// ParseDifficulty parses a difficulty label, ignoring case and surrounding space.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, err := ResolveTier(d); err != nil {
		return "", err
	}
	return d, nil
}

// ResolveTier returns the fixed band and anchor for a difficulty.
func ResolveTier(d Difficulty) (Tier, error) {
	for _, t := range tiers {
		if t.Difficulty == d {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, string(d))
}

// MaxEnergy is the highest energy the tier can report.
func (t Tier) MaxEnergy() float64 {
	return t.Band[3] + ceilingHeadroom
}

// Score computes the energy of a scenario score in this tier. The result is
// never negative and is capped at MaxEnergy for the top tier.
func (t Tier) Score(score float64, th Thresholds) float64 {
	e := Energy(score, th, t.Band, t.PrevEnergy)
	if t.Capped {
		e = math.Min(e, t.MaxEnergy())
	}
	return math.Max(0, e)
}

// Pair is the configuration of a two-scenario benchmark.
type Pair struct {
	Tier Tier
	A    Thresholds
	B    Thresholds
}

// BenchmarkEnergy scores both scenarios of a pair and keeps the better one.
func BenchmarkEnergy(scoreA, scoreB float64, p Pair) float64 {
	ea := Energy(scoreA, p.A, p.Tier.Band, p.Tier.PrevEnergy)
	eb := Energy(scoreB, p.B, p.Tier.Band, p.Tier.PrevEnergy)
	return p.Tier.Combine(ea, eb)
}

// Combine folds two scenario energies into one benchmark energy: the larger
// of the two, floored at 0 and capped at MaxEnergy.
func (t Tier) Combine(a, b float64) float64 {
	return math.Min(math.Max(0, math.Max(a, b)), t.MaxEnergy())
}
