package auth

import "errors"

// Sentinel errors returned by verifiers and the middleware.
var (
	ErrMissingCredentials = errors.New("authorization header missing")
	ErrMalformedHeader    = errors.New("authorization header is malformed")
	ErrMissingSubject     = errors.New("token missing subject claim")
	ErrInvalidToken       = errors.New("token verification failed")
	ErrUnsupportedMode    = errors.New("unsupported auth mode")
	ErrMissingSecret      = errors.New("jwt auth requires a secret")
)
