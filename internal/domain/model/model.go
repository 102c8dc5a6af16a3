// Package model contains domain models passed between layers.
package model

// DimensionInfo describes one rubric dimension: its relative weight and the
// raw grade bounds declared by the grading strategy.
type DimensionInfo struct {
	ID     string
	Weight float64 // relative importance, non-negative
	Min    float64 // lowest raw grade the dimension accepts
	Max    float64 // highest raw grade the dimension accepts

	// Variance is the weighted population variance of the normalized grades
	// across one submission batch. It is populated by the evaluator before
	// any distance is computed and is nil when fewer than two weighted
	// grades exist for the dimension.
	Variance *float64
}

// GradeRecord is one raw (assessment, dimension) grade row as produced by the
// grading strategy. Multiple records share an AssessmentID, one per dimension.
type GradeRecord struct {
	AssessmentID     string
	AssessmentWeight float64
	ReviewerID       string
	GradingGrade     *float64 // currently stored grading grade, nil if never graded
	SubmissionID     string
	DimensionID      string
	Grade            float64 // raw grade for the dimension
}

// Assessment is one reviewer's assembled set of dimension grades for a single
// submission. DimGrades holds normalized grades on the 0-100 scale keyed by
// dimension id.
type Assessment struct {
	ID           string
	Weight       float64
	ReviewerID   string
	SubmissionID string
	GradingGrade *float64
	DimGrades    map[string]float64
}

// AverageAssessment is the hypothetical weight-free assessment holding the
// weighted mean of the normalized grades per dimension. It exists only while
// a single batch is being processed.
type AverageAssessment struct {
	DimGrades map[string]float64
}

// GradingGradeUpdate instructs the persistence sink to store a new grading
// grade for an assessment, leaving all other fields untouched.
type GradingGradeUpdate struct {
	AssessmentID string
	GradingGrade float64
}
