package api

import (
	"context"
	"net/http"

	"github.com/okian/aimtrack/internal/domain/types"
	"github.com/okian/aimtrack/pkg/logger"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Rank(ctx context.Context, board, benchmark, user string) (types.LeaderboardEntry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps   RankDependencies
	logger logger.Logger
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies, l logger.Logger) *RankHandler {
	return &RankHandler{deps: deps, logger: l}
}

// HandleGetRank handles GET /rank/{board}/{benchmark}/{user} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	entry, err := h.deps.Rank(r.Context(), r.PathValue("board"), r.PathValue("benchmark"), r.PathValue("user"))
	if err != nil {
		fail(r.Context(), w, h.logger, "api.get_rank", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
