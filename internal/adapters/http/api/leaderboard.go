package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/aimtrack/internal/domain/types"
	"github.com/okian/aimtrack/pkg/logger"
)

const defaultLimit = 10

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	TopN(ctx context.Context, board, benchmark string, n int) ([]types.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
	logger   logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int, l logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
		logger:   l,
	}
}

// HandleGetLeaderboard handles GET /leaderboard/{board}/{benchmark}?limit=N
// requests. The limit defaults to 10.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n := min(defaultLimit, h.maxLimit)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, NewKind(op, ErrLimitExceeded))
		return
	}
	entries, err := h.deps.TopN(r.Context(), r.PathValue("board"), r.PathValue("benchmark"), n)
	if err != nil {
		fail(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
