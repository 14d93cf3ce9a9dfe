package progress

import "errors"

// ErrInvalidDateQuery is returned for date filters that cannot be parsed.
var ErrInvalidDateQuery = errors.New("invalid date query")
