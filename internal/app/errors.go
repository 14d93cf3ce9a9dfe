package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("entry queue is full")
)
