// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/aimtrack/internal/adapters/http/auth"
	"github.com/okian/aimtrack/pkg/logger"
)

const defaultMaxLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EntryDependencies
	ProgressDependencies
	EnergyDependencies
	LeaderboardDependencies
	RankDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	entriesHandler     *EntriesHandler
	progressHandler    *ProgressHandler
	energyHandler      *EnergyHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler

	verifier auth.Verifier
	maxLimit int
	logger   logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxLimit bounds the leaderboard limit parameter.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithVerifier sets how /me routes authenticate. The default trusts the
// X-User-ID header.
func WithVerifier(v auth.Verifier) Option {
	return func(s *Server) {
		if v != nil {
			s.verifier = v
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(s)
	}
	if s.verifier == nil {
		s.verifier, _ = auth.NewVerifier(auth.Config{Mode: auth.ModeNoop})
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.entriesHandler = NewEntriesHandler(deps, s.logger)
	s.progressHandler = NewProgressHandler(deps, s.logger)
	s.energyHandler = NewEnergyHandler(deps, s.logger)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLimit, s.logger)
	s.rankHandler = NewRankHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	authed := auth.Middleware(s.verifier, func(w http.ResponseWriter, err error) {
		writeError(w, WrapKind("api.auth", ErrUnauthorized, err))
	})

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /me/entries", MetricsMiddleware(authed(s.entriesHandler.HandlePostEntry), "post_entry"))
	mux.HandleFunc("GET /me/latest-entry-timestamp", MetricsMiddleware(authed(s.entriesHandler.HandleLatestTimestamp), "latest_entry_timestamp"))
	mux.HandleFunc("GET /entries/me/{board}/{dateQuery}", MetricsMiddleware(authed(s.entriesHandler.HandleListEntries), "entries"))
	mux.HandleFunc("GET /progress/me/{board}", MetricsMiddleware(authed(s.progressHandler.HandleGetProgress), "progress"))

	mux.HandleFunc("GET /energy/{board}/{hash}", MetricsMiddleware(s.energyHandler.HandleGetEnergy, "energy"))
	mux.HandleFunc("GET /leaderboard/{board}/{benchmark}", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rank/{board}/{benchmark}/{user}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its HTTP status and writes the error body.
func writeError(w http.ResponseWriter, err error) int {
	c := classify(err)
	writeJSON(w, c.status, errorResponse{Code: c.code, Message: err.Error()})
	return c.status
}

// fail writes err and logs it when the failure is on the server side.
func fail(ctx context.Context, w http.ResponseWriter, l logger.Logger, op string, err error) {
	err = Wrap(op, err)
	if status := writeError(w, err); status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
	}
}

func currentUser(r *http.Request) string {
	u, _ := auth.UserFromContext(r.Context())
	return u.ID
}
