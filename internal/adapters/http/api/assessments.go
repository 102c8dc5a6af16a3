// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/peergrade/internal/adapters/repository"
	"github.com/okian/peergrade/internal/domain/types"
)

// AssessmentsDependencies defines the interface for assessment lookups.
type AssessmentsDependencies interface {
	AssessmentGrade(ctx context.Context, assessmentID string) (types.AssessmentGrade, error)
}

// AssessmentsHandler handles single-assessment lookups.
type AssessmentsHandler struct {
	deps AssessmentsDependencies
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps AssessmentsDependencies) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps}
}

// HandleGetAssessment handles GET /assessments/{id} requests.
func (h *AssessmentsHandler) HandleGetAssessment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/assessments/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	ag, err := h.deps.AssessmentGrade(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", repository.ErrNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, ag)
}
