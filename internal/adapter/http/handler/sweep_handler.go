package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/creditdesk/internal/adapter/http/dto"
	"github.com/iho/creditdesk/internal/usecase"
)

// SweepService defines the behavior needed by SweepHandler.
type SweepService interface {
	Tick(ctx context.Context, now time.Time) (usecase.SweepResult, error)
}

// SweepHandler triggers a sweep outside the periodic schedule. Intended for
// operators; a sweep already in flight reports skipped.
type SweepHandler struct {
	sweepUC SweepService
	clock   usecase.Clock
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(sweepUC SweepService, clock usecase.Clock) *SweepHandler {
	return &SweepHandler{sweepUC: sweepUC, clock: clock}
}

// Trigger runs one sweep immediately.
func (h *SweepHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	result, err := h.sweepUC.Tick(r.Context(), h.clock.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sweep failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepResponse{
		Skipped:     result.Skipped,
		Transitions: result.Transitions,
		Expirations: result.Expirations,
		Errors:      result.Errors,
	})
}
