package energy

import "errors"

// Sentinel kinds for energy errors.
var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)
