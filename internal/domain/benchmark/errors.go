package benchmark

import "errors"

// Sentinel errors for catalog lookups and loading.
var (
	ErrSeasonNotFound     = errors.New("season not found")
	ErrDifficultyNotFound = errors.New("difficulty not found")
	ErrScenarioNotFound   = errors.New("scenario not found")
	ErrBenchmarkNotFound  = errors.New("benchmark not found")
	ErrInvalidBoard       = errors.New("invalid board")
	ErrInvalidCatalog     = errors.New("invalid catalog")
)
