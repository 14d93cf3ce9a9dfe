// Package types contains common types used across the application
package types

// LeaderboardEntry is one row of a benchmark leaderboard.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Energy   float64 `json:"energy"`
	RankName string  `json:"rank_name,omitempty"`
}

// EnergyReading is the energy a single scenario score is worth in a division.
type EnergyReading struct {
	Board     string  `json:"board"`
	Hash      string  `json:"hash"`
	Scenario  string  `json:"scenario"`
	Benchmark string  `json:"benchmark"`
	Score     float64 `json:"score"`
	Energy    float64 `json:"energy"`
	RankName  string  `json:"rank_name"`
}

// SubmitStatus tells the uploader what happened to an entry.
type SubmitStatus int

const (
	// SubmitAccepted means the entry was queued for ingestion.
	SubmitAccepted SubmitStatus = iota
	// SubmitDuplicate means the same attempt was uploaded before.
	SubmitDuplicate
)

func (s SubmitStatus) String() string {
	if s == SubmitDuplicate {
		return "duplicate"
	}
	return "accepted"
}
