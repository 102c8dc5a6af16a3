// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/peergrade/internal/domain/types"
)

// ReviewersDependencies defines the interface for ranking operations.
type ReviewersDependencies interface {
	TopReviewers(ctx context.Context, n int) ([]types.ReviewerStanding, error)
}

// ReviewersHandler handles reviewer ranking requests.
type ReviewersHandler struct {
	deps     ReviewersDependencies
	maxLimit int
}

// NewReviewersHandler creates a new reviewers handler.
func NewReviewersHandler(deps ReviewersDependencies, maxLimit int) *ReviewersHandler {
	return &ReviewersHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetReviewers handles GET /reviewers?limit=N requests.
func (h *ReviewersHandler) HandleGetReviewers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
		return
	}
	standings, err := h.deps.TopReviewers(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}
