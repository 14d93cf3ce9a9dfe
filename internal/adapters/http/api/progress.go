package api

import (
	"context"
	"net/http"

	"github.com/okian/aimtrack/internal/domain/progress"
	"github.com/okian/aimtrack/pkg/logger"
)

// ProgressDependencies defines the progress report operation.
type ProgressDependencies interface {
	Progress(ctx context.Context, user, board string) (progress.Report, error)
}

// ProgressHandler handles progress requests.
type ProgressHandler struct {
	deps   ProgressDependencies
	logger logger.Logger
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies, l logger.Logger) *ProgressHandler {
	return &ProgressHandler{deps: deps, logger: l}
}

// HandleGetProgress handles GET /progress/me/{board} requests.
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.Progress(r.Context(), currentUser(r), r.PathValue("board"))
	if err != nil {
		fail(r.Context(), w, h.logger, "api.get_progress", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
