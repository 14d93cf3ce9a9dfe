package api

import (
	"errors"
	"net/http"

	service "github.com/okian/aimtrack/internal/app"
	"github.com/okian/aimtrack/internal/adapters/http/auth"
	"github.com/okian/aimtrack/internal/adapters/repository"
	"github.com/okian/aimtrack/internal/domain/benchmark"
	"github.com/okian/aimtrack/internal/domain/progress"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeds maximum")
	ErrUnauthorized  = errors.New("unauthorized")
)

// Error records the handler operation that failed, the kind of failure and
// the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap attaches op to err.
func Wrap(op string, err error) error {
	return &Error{Op: op, Err: err}
}

type errorClass struct {
	status int
	code   string
}

// classes is checked in order; the first matching sentinel decides.
var classes = []struct {
	err   error
	class errorClass
}{
	{ErrUnauthorized, errorClass{http.StatusUnauthorized, "unauthorized"}},
	{ErrLimitExceeded, errorClass{http.StatusBadRequest, "limit_exceeded"}},
	{ErrBadRequest, errorClass{http.StatusBadRequest, "bad_request"}},
	{benchmark.ErrInvalidBoard, errorClass{http.StatusBadRequest, "invalid_board"}},
	{progress.ErrInvalidDateQuery, errorClass{http.StatusBadRequest, "invalid_date_query"}},
	{repository.ErrInvalidLimit, errorClass{http.StatusBadRequest, "bad_request"}},
	{repository.ErrInvalidEntry, errorClass{http.StatusBadRequest, "invalid_entry"}},
	{benchmark.ErrSeasonNotFound, errorClass{http.StatusNotFound, "season_not_found"}},
	{benchmark.ErrDifficultyNotFound, errorClass{http.StatusNotFound, "difficulty_not_found"}},
	{benchmark.ErrScenarioNotFound, errorClass{http.StatusNotFound, "scenario_not_found"}},
	{benchmark.ErrBenchmarkNotFound, errorClass{http.StatusNotFound, "benchmark_not_found"}},
	{repository.ErrNotFound, errorClass{http.StatusNotFound, "not_found"}},
	{service.ErrBackpressure, errorClass{http.StatusTooManyRequests, "backpressure"}},
	{service.ErrNotStarted, errorClass{http.StatusServiceUnavailable, "unavailable"}},
	{auth.ErrMissingCredentials, errorClass{http.StatusUnauthorized, "unauthorized"}},
	{auth.ErrMalformedHeader, errorClass{http.StatusUnauthorized, "unauthorized"}},
	{auth.ErrInvalidToken, errorClass{http.StatusUnauthorized, "unauthorized"}},
	{auth.ErrMissingSubject, errorClass{http.StatusUnauthorized, "unauthorized"}},
}

func classify(err error) errorClass {
	for _, c := range classes {
		if errors.Is(err, c.err) {
			return c.class
		}
	}
	return errorClass{http.StatusInternalServerError, "internal_error"}
}
