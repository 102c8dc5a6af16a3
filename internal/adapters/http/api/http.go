// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/peergrade/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Recalculate recomputes grading grades, optionally restricted to the
	// listed reviewer ids.
	Recalculate(ctx context.Context, restrict []string) (types.RecalcSummary, error)

	// Read operations expose grading data.
	TopReviewers(ctx context.Context, n int) ([]types.ReviewerStanding, error)
	AssessmentGrade(ctx context.Context, assessmentID string) (types.AssessmentGrade, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	recalculateHandler *RecalculateHandler
	reviewersHandler   *ReviewersHandler
	assessmentsHandler *AssessmentsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxReviewersLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		recalculateHandler: NewRecalculateHandler(deps),
		reviewersHandler:   NewReviewersHandler(deps, maxReviewersLimit),
		assessmentsHandler: NewAssessmentsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/recalculate", MetricsMiddleware(s.recalculateHandler.HandleRecalculate, "recalculate"))
	mux.HandleFunc("/reviewers", MetricsMiddleware(s.reviewersHandler.HandleGetReviewers, "reviewers"))
	mux.HandleFunc("/assessments/", MetricsMiddleware(s.assessmentsHandler.HandleGetAssessment, "assessments"))
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

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
