package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/peergrade/internal/domain/model"
	"github.com/okian/peergrade/internal/domain/types"
)

type memAssessment struct {
	id           string
	submissionID string
	reviewerID   string
	weight       float64
	gradingGrade *float64
	grades       []memGrade // insertion order preserved
}

type memGrade struct {
	dimensionID string
	grade       float64
}

// MemStore implements Store in memory. It backs tests and serves as a
// seeding target when no database is wanted.
type MemStore struct {
	mu          sync.RWMutex
	dimensions  map[string]model.DimensionInfo
	assessments map[string]*memAssessment
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		dimensions:  make(map[string]model.DimensionInfo),
		assessments: make(map[string]*memAssessment),
	}
}

// DimensionsInfo returns a copy of the dimension table.
func (s *MemStore) DimensionsInfo(ctx context.Context) (map[string]model.DimensionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	diminfo := make(map[string]model.DimensionInfo, len(s.dimensions))
	for id, dim := range s.dimensions {
		diminfo[id] = dim
	}
	return diminfo, nil
}

// AssessmentRecords streams records sorted by (submission, assessment) so
// that submissions are contiguous.
func (s *MemStore) AssessmentRecords(ctx context.Context, restrict []string, fn func(model.GradeRecord) error) error {
	s.mu.RLock()
	ordered := make([]*memAssessment, 0, len(s.assessments))
	var allowed map[string]struct{}
	if len(restrict) > 0 {
		allowed = make(map[string]struct{}, len(restrict))
		for _, id := range restrict {
			allowed[id] = struct{}{}
		}
	}
	for _, a := range s.assessments {
		if allowed != nil {
			if _, ok := allowed[a.reviewerID]; !ok {
				continue
			}
		}
		ordered = append(ordered, a)
	}
	s.mu.RUnlock()

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].submissionID != ordered[j].submissionID {
			return ordered[i].submissionID < ordered[j].submissionID
		}
		return ordered[i].id < ordered[j].id
	})

	for _, a := range ordered {
		for _, g := range a.grades {
			rec := model.GradeRecord{
				AssessmentID:     a.id,
				AssessmentWeight: a.weight,
				ReviewerID:       a.reviewerID,
				GradingGrade:     a.gradingGrade,
				SubmissionID:     a.submissionID,
				DimensionID:      g.dimensionID,
				Grade:            g.grade,
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyGradingGrades stores the new grading grades.
func (s *MemStore) ApplyGradingGrades(ctx context.Context, updates []model.GradingGradeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		a, ok := s.assessments[u.AssessmentID]
		if !ok {
			return ErrNotFound
		}
		grade := u.GradingGrade
		a.gradingGrade = &grade
	}
	return nil
}

// TopReviewers ranks reviewers by mean grading grade descending.
func (s *MemStore) TopReviewers(ctx context.Context, n int) ([]types.ReviewerStanding, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, a := range s.assessments {
		if a.gradingGrade == nil {
			continue
		}
		sums[a.reviewerID] += *a.gradingGrade
		counts[a.reviewerID]++
	}
	s.mu.RUnlock()

	standings := make([]types.ReviewerStanding, 0, len(sums))
	for reviewerID, sum := range sums {
		standings = append(standings, types.ReviewerStanding{
			ReviewerID:       reviewerID,
			MeanGradingGrade: sum / float64(counts[reviewerID]),
			Assessments:      counts[reviewerID],
		})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].MeanGradingGrade != standings[j].MeanGradingGrade {
			return standings[i].MeanGradingGrade > standings[j].MeanGradingGrade
		}
		return standings[i].ReviewerID < standings[j].ReviewerID
	})
	if len(standings) > n {
		standings = standings[:n]
	}
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

// AssessmentGrade returns the stored grading grade for one assessment.
func (s *MemStore) AssessmentGrade(ctx context.Context, assessmentID string) (types.AssessmentGrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[assessmentID]
	if !ok {
		return types.AssessmentGrade{}, ErrNotFound
	}
	var grade *float64
	if a.gradingGrade != nil {
		v := *a.gradingGrade
		grade = &v
	}
	return types.AssessmentGrade{
		AssessmentID: a.id,
		SubmissionID: a.submissionID,
		ReviewerID:   a.reviewerID,
		GradingGrade: grade,
	}, nil
}

// CountReviewers returns the number of distinct reviewers in the store.
func (s *MemStore) CountReviewers(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reviewers := make(map[string]struct{})
	for _, a := range s.assessments {
		reviewers[a.reviewerID] = struct{}{}
	}
	return len(reviewers)
}

// PutDimension inserts or replaces a rubric dimension.
func (s *MemStore) PutDimension(ctx context.Context, dim model.DimensionInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimensions[dim.ID] = dim
	return nil
}

// PutAssessment inserts an assessment row with no grading grade yet.
func (s *MemStore) PutAssessment(ctx context.Context, id, submissionID, reviewerID string, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[id] = &memAssessment{
		id:           id,
		submissionID: submissionID,
		reviewerID:   reviewerID,
		weight:       weight,
	}
	return nil
}

// PutGrade appends or replaces one dimension grade of an assessment.
func (s *MemStore) PutGrade(ctx context.Context, assessmentID, dimensionID string, grade float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assessments[assessmentID]
	if !ok {
		return ErrNotFound
	}
	for i := range a.grades {
		if a.grades[i].dimensionID == dimensionID {
			a.grades[i].grade = grade
			return nil
		}
	}
	a.grades = append(a.grades, memGrade{dimensionID: dimensionID, grade: grade})
	return nil
}
