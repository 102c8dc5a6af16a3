// Package repository defines the assessment store contracts and errors.
package repository

import (
	"context"

	"github.com/okian/peergrade/internal/domain/model"
	"github.com/okian/peergrade/internal/domain/types"
)

// Source is the grading-strategy side of the evaluator boundary: it exposes
// the rubric dimensions and streams raw grade records.
type Source interface {
	// DimensionsInfo returns the declared rubric dimensions keyed by id.
	// The Variance field is left nil for the evaluator to populate.
	DimensionsInfo(ctx context.Context) (map[string]model.DimensionInfo, error)

	// AssessmentRecords streams grade records grouped contiguously by
	// submission id, calling fn once per record. A nil or empty restrict
	// means all reviewers; otherwise only records authored by the listed
	// reviewer ids are streamed. Iteration stops on the first fn error.
	AssessmentRecords(ctx context.Context, restrict []string, fn func(model.GradeRecord) error) error
}

// Sink persists grading-grade changes computed by the evaluator. It must
// apply the updates as a bulk write without altering other fields.
type Sink interface {
	ApplyGradingGrades(ctx context.Context, updates []model.GradingGradeUpdate) error
}

// Store bundles the evaluator boundary with the read queries backing the
// HTTP surface and the seeding writers.
type Store interface {
	Source
	Sink

	// TopReviewers returns up to n reviewers ranked by mean grading grade
	// descending. Reviewers with no graded assessments are excluded.
	TopReviewers(ctx context.Context, n int) ([]types.ReviewerStanding, error)

	// AssessmentGrade returns the stored grading grade of one assessment.
	// Returns ErrNotFound for an unknown assessment id.
	AssessmentGrade(ctx context.Context, assessmentID string) (types.AssessmentGrade, error)

	// CountReviewers returns the number of distinct reviewers tracked.
	CountReviewers(ctx context.Context) int

	// PutDimension, PutAssessment and PutGrade populate the store. They
	// exist for seeding and tests; the evaluator itself never writes
	// through them.
	PutDimension(ctx context.Context, dim model.DimensionInfo) error
	PutAssessment(ctx context.Context, id, submissionID, reviewerID string, weight float64) error
	PutGrade(ctx context.Context, assessmentID, dimensionID string, grade float64) error
}
