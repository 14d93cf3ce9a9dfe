// Package energy converts raw scenario scores into benchmark energy.
//
// Energy is a continuous skill scale shared by every difficulty tier. Each
// tier owns a band of four energy values and each scenario owns four score
// thresholds per tier; a score is placed on the scale by linear
// interpolation between the matching thresholds.
package energy

// Thresholds are the four score boundaries of one scenario within a tier.
type Thresholds [4]float64

// Band holds the four energy values assigned to a tier.
type Band [4]float64

// Valid reports whether the thresholds are strictly increasing.
func (t Thresholds) Valid() bool {
	return t[0] < t[1] && t[1] < t[2] && t[2] < t[3]
}

// Floor returns the extrapolated boundary one segment below the first
// threshold. Scores between Floor and the first threshold still earn a
// share of the tier's lower anchor.
func (t Thresholds) Floor() float64 {
	return t[0] - (t[1] - t[0])
}

// Energy maps score onto the energy scale using the thresholds of one
// scenario, the band of its tier and the tier's lower anchor.
//
// The segment is picked from the boundaries [0, t0, t1, t2, t3, t4] and the
// matching base, width and slope are looked up by the same 1-based index.
// The lookup lists repeat the boundary segments (t0..t1 and the segment past
// t4), which decides the slope used right at a tier edge. The result is not
// clamped; see Tier.Score.
//
// Degenerate thresholds (a zero-width segment) yield 0.
func Energy(score float64, t Thresholds, band Band, prevEnergy float64) float64 {
	t1, t2, t3, t4 := t[0], t[1], t[2], t[3]
	e1, e2, e3, e4 := band[0], band[1], band[2], band[3]
	t0 := t.Floor()

	idx := match(score, 0, t0, t1, t2, t3, t4)
	if idx == 0 {
		return 0
	}

	base := choose(idx, 0, prevEnergy, e1, e2, e3, e4)
	baseScore := choose(idx, 0, t0, t1, t2, t3, t4)
	width := choose(idx, t0, t1-t0, t2-t1, t3-t2, t4-t3, t4-t3)
	span := choose(idx, prevEnergy, e1-prevEnergy, e2-e1, e3-e2, e4-e3, e4-e3)

	if width == 0 {
		return 0
	}
	return base + (score-baseScore)/width*span
}

// match returns how many leading boundaries are <= score, stopping at the
// first boundary above it.
func match(score float64, boundaries ...float64) int {
	idx := 0
	for i, b := range boundaries {
		if b > score {
			break
		}
		idx = i + 1
	}
	return idx
}

// choose returns the idx-th value (1-based), or 0 when idx is out of range.
func choose(idx int, values ...float64) float64 {
	if idx < 1 || idx > len(values) {
		return 0
	}
	return values[idx-1]
}
