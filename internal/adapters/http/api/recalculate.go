// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/peergrade/internal/domain/evaluate"
	"github.com/okian/peergrade/internal/domain/types"
)

// RecalculateDependencies defines the interface for recalculation.
type RecalculateDependencies interface {
	Recalculate(ctx context.Context, restrict []string) (types.RecalcSummary, error)
}

// RecalculateHandler handles recalculation requests.
type RecalculateHandler struct {
	deps RecalculateDependencies
}

// NewRecalculateHandler creates a new recalculate handler.
func NewRecalculateHandler(deps RecalculateDependencies) *RecalculateHandler {
	return &RecalculateHandler{deps: deps}
}

// recalcRequest mirrors the POST /recalculate body. An absent or empty
// reviewers list means all reviewers.
type recalcRequest struct {
	Reviewers []string `json:"reviewers"`
}

// HandleRecalculate handles POST /recalculate requests.
func (h *RecalculateHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req recalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	summary, err := h.deps.Recalculate(r.Context(), req.Reviewers)
	if err != nil {
		// A rubric problem is the caller's to fix; everything else is ours.
		if errors.Is(err, evaluate.ErrInvalidScale) ||
			errors.Is(err, evaluate.ErrUnknownDimension) ||
			errors.Is(err, evaluate.ErrDimensionMismatch) {
			writeError(w, http.StatusUnprocessableEntity, "rubric_error", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
