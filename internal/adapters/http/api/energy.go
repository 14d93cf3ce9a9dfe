package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/okian/aimtrack/internal/domain/types"
	"github.com/okian/aimtrack/pkg/logger"
)

// EnergyDependencies defines the energy calculator.
type EnergyDependencies interface {
	Energy(ctx context.Context, board, hash string, score float64) (types.EnergyReading, error)
}

// EnergyHandler handles energy calculator requests.
type EnergyHandler struct {
	deps   EnergyDependencies
	logger logger.Logger
}

// NewEnergyHandler creates a new energy handler.
func NewEnergyHandler(deps EnergyDependencies, l logger.Logger) *EnergyHandler {
	return &EnergyHandler{deps: deps, logger: l}
}

// HandleGetEnergy handles GET /energy/{board}/{hash}?score=S requests.
func (h *EnergyHandler) HandleGetEnergy(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_energy"
	score, err := strconv.ParseFloat(r.URL.Query().Get("score"), 64)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("score must be finite")))
		return
	}
	reading, err := h.deps.Energy(r.Context(), r.PathValue("board"), r.PathValue("hash"), score)
	if err != nil {
		fail(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
