package replay

import "errors"

// Sentinel errors for replay runs.
var (
	ErrUnhealthy   = errors.New("service is not healthy")
	ErrBadResponse = errors.New("unexpected response")
	ErrNoEntries   = errors.New("no entries to replay")
)
