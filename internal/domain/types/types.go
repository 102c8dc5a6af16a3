// Package types contains common types used across the application
package types

// ReviewerStanding represents one row of the reviewer ranking: a reviewer and
// the mean grading grade earned across their assessments.
type ReviewerStanding struct {
	Rank             int     `json:"rank"`
	ReviewerID       string  `json:"reviewer_id"`
	MeanGradingGrade float64 `json:"mean_grading_grade"`
	Assessments      int     `json:"assessments"`
}

// AssessmentGrade is the read shape for a single assessment's grading grade.
type AssessmentGrade struct {
	AssessmentID string   `json:"assessment_id"`
	SubmissionID string   `json:"submission_id"`
	ReviewerID   string   `json:"reviewer_id"`
	GradingGrade *float64 `json:"grading_grade"`
}

// RecalcSummary reports what a recalculation run touched.
type RecalcSummary struct {
	Batches     int   `json:"batches"`
	Skipped     int   `json:"skipped"`
	Assessments int   `json:"assessments"`
	Updates     int   `json:"updates"`
	DurationMS  int64 `json:"duration_ms"`
}
