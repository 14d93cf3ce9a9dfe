// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"time"
)

// Entry is one recorded scenario attempt uploaded by a player's tracker.
type Entry struct {
	ID       string  // server assigned when the client omits it
	UserID   string  // owner of the entry
	Scenario string  // scenario display name
	Hash     string  // scenario identifier used by the catalog
	Score    float64 // raw scenario score
	CTime    int64   // completion time in unix nanoseconds

	SensScale     string
	SensIncrement float64
	DPI           int
	FOVScale      string
	FOV           float64
}

// Key identifies an attempt for deduplication: the same user cannot finish
// the same scenario twice at the same instant.
func (e Entry) Key() string {
	return e.UserID + "|" + e.Hash + "|" + strconv.FormatInt(e.CTime, 10)
}

// Time returns CTime as a UTC time.
func (e Entry) Time() time.Time {
	return time.Unix(0, e.CTime).UTC()
}

// Standing is a player's current energy on one benchmark leaderboard.
type Standing struct {
	Board     string
	Benchmark string
	UserID    string
	Energy    float64
}
