package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/aimtrack/internal/domain/model"
	"github.com/okian/aimtrack/internal/domain/types"
	"github.com/okian/aimtrack/pkg/logger"
)

const maxEntryBody = 1 << 20

var validate = validator.New()

// EntryDependencies defines the entry upload and listing operations.
type EntryDependencies interface {
	Submit(ctx context.Context, e model.Entry) (types.SubmitStatus, error)
	Entries(ctx context.Context, user, board, dateQuery string) ([]model.Entry, error)
	LatestTimestamp(ctx context.Context, user string) (int64, error)
}

// entryRequest mirrors the OpenAPI schema for POST /me/entries.
type entryRequest struct {
	ID            string  `json:"id" validate:"omitempty,max=64"`
	Scenario      string  `json:"scenario" validate:"required,max=256"`
	Hash          string  `json:"hash" validate:"required,alphanum,max=64"`
	Score         float64 `json:"score" validate:"gte=0"`
	CTime         int64   `json:"ctime" validate:"required,gt=0"`
	SensScale     string  `json:"sens_scale" validate:"max=64"`
	SensIncrement float64 `json:"sens_increment" validate:"gte=0"`
	DPI           int     `json:"dpi" validate:"gte=0"`
	FOVScale      string  `json:"fov_scale" validate:"max=64"`
	FOV           float64 `json:"fov" validate:"gte=0,lte=180"`
}

func (e *entryRequest) toModel(user string) model.Entry {
	return model.Entry{
		ID:            e.ID,
		UserID:        user,
		Scenario:      e.Scenario,
		Hash:          e.Hash,
		Score:         e.Score,
		CTime:         e.CTime,
		SensScale:     e.SensScale,
		SensIncrement: e.SensIncrement,
		DPI:           e.DPI,
		FOVScale:      e.FOVScale,
		FOV:           e.FOV,
	}
}

// entryView is the read shape of a stored entry.
type entryView struct {
	ID            string  `json:"id"`
	Scenario      string  `json:"scenario"`
	Hash          string  `json:"hash"`
	Score         float64 `json:"score"`
	CTime         int64   `json:"ctime"`
	SensScale     string  `json:"sens_scale,omitempty"`
	SensIncrement float64 `json:"sens_increment,omitempty"`
	DPI           int     `json:"dpi,omitempty"`
	FOVScale      string  `json:"fov_scale,omitempty"`
	FOV           float64 `json:"fov,omitempty"`
}

func viewOf(e *model.Entry) entryView {
	return entryView{
		ID:            e.ID,
		Scenario:      e.Scenario,
		Hash:          e.Hash,
		Score:         e.Score,
		CTime:         e.CTime,
		SensScale:     e.SensScale,
		SensIncrement: e.SensIncrement,
		DPI:           e.DPI,
		FOVScale:      e.FOVScale,
		FOV:           e.FOV,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type timestampResponse struct {
	CTime int64 `json:"ctime"`
}

// EntriesHandler handles the authenticated entry routes.
type EntriesHandler struct {
	deps   EntryDependencies
	logger logger.Logger
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps EntryDependencies, l logger.Logger) *EntriesHandler {
	return &EntriesHandler{deps: deps, logger: l}
}

// HandlePostEntry handles POST /me/entries requests.
func (h *EntriesHandler) HandlePostEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_entry"
	var req entryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEntryBody)).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	status, err := h.deps.Submit(r.Context(), req.toModel(currentUser(r)))
	if err != nil {
		fail(r.Context(), w, h.logger, op, err)
		return
	}
	if status == types.SubmitDuplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: status.String(), Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: status.String()})
}

// HandleLatestTimestamp handles GET /me/latest-entry-timestamp requests.
func (h *EntriesHandler) HandleLatestTimestamp(w http.ResponseWriter, r *http.Request) {
	ts, err := h.deps.LatestTimestamp(r.Context(), currentUser(r))
	if err != nil {
		fail(r.Context(), w, h.logger, "api.latest_entry_timestamp", err)
		return
	}
	writeJSON(w, http.StatusOK, timestampResponse{CTime: ts})
}

// HandleListEntries handles GET /entries/me/{board}/{dateQuery} requests.
func (h *EntriesHandler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.deps.Entries(r.Context(), currentUser(r), r.PathValue("board"), r.PathValue("dateQuery"))
	if err != nil {
		fail(r.Context(), w, h.logger, "api.list_entries", err)
		return
	}
	out := make([]entryView, len(entries))
	for i := range entries {
		out[i] = viewOf(&entries[i])
	}
	writeJSON(w, http.StatusOK, out)
}
