package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("player not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrInvalidEntry = errors.New("invalid entry")
)
