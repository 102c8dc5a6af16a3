// Package evaluate implements the consensus evaluator: given all peer
// assessments of one submission it identifies the assessment(s) closest to
// the hypothetical average and grades every reviewer by their distance to the
// nearest of those best assessments.
package evaluate

import (
	"fmt"

	"github.com/okian/peergrade/internal/domain/gradefloat"
	"github.com/okian/peergrade/internal/domain/model"
)

// defaultSensitivity is the divisor applied to dimension variances in the
// distance formula. 1 is the strictest comparison, larger values are laxer.
const defaultSensitivity = 5.0

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithSensitivity sets the grading comparison sensitivity divisor.
func WithSensitivity(v float64) Option {
	return func(e *Evaluator) {
		if v > 0 {
			e.sensitivity = v
		}
	}
}

// Evaluator computes grading grades for per-submission assessment batches.
// It is stateless across batches and safe for concurrent use once built.
type Evaluator struct {
	diminfo     map[string]model.DimensionInfo
	sensitivity float64
}

// New creates an Evaluator over the declared rubric dimensions.
func New(diminfo map[string]model.DimensionInfo, opts ...Option) *Evaluator {
	e := &Evaluator{
		diminfo:     diminfo,
		sensitivity: defaultSensitivity,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BatchResult summarises the evaluation of one submission batch.
type BatchResult struct {
	SubmissionID string
	Assessments  int
	Updates      []model.GradingGradeUpdate
	Skipped      bool // true when the batch carried no usable signal
}

// ProcessBatch runs the full pipeline for the grade records of a single
// submission: assemble, normalize, estimate dispersion, select the consensus
// assessments and map distances to grading grades. It returns update
// instructions only for assessments whose grade actually changed.
//
// An empty batch and a batch with zero total assessment weight are both
// skipped without error. A malformed rubric (max == min) or inconsistent
// dimension sets abort with an error.
func (e *Evaluator) ProcessBatch(batch []model.GradeRecord) (BatchResult, error) {
	if len(batch) == 0 {
		return BatchResult{Skipped: true}, nil
	}

	res := BatchResult{SubmissionID: batch[0].SubmissionID}

	assessments, order, err := e.assemble(batch)
	if err != nil {
		return res, err
	}
	res.Assessments = len(order)

	if err := e.normalize(assessments, order); err != nil {
		return res, err
	}

	average := averageAssessment(assessments, order)
	if average == nil {
		// Zero total weight: no meaningful consensus exists, which is a
		// legitimate state rather than an error.
		res.Skipped = true
		return res, nil
	}

	// Re-derive the dimension table with batch variances populated. The
	// evaluator's own table stays untouched so batches remain independent.
	diminfo := e.withVariances(assessments, order)

	// Pass one: who is closest to the hypothetical average.
	best := selectBest(assessments, order, average, diminfo, e.sensitivity)

	// Pass two: measure everyone against the concrete best performers and
	// convert the nearest-best distance into a grading grade.
	for _, id := range order {
		a := assessments[id]
		d := nearestBestDistance(a, best, assessments, diminfo, e.sensitivity)

		grade := 100.0
		if d != nil {
			grade = gradefloat.Round(100 - *d)
		}
		if a.GradingGrade != nil && gradefloat.Equal(grade, *a.GradingGrade) {
			continue
		}
		res.Updates = append(res.Updates, model.GradingGradeUpdate{
			AssessmentID: id,
			GradingGrade: grade,
		})
	}
	return res, nil
}

// assemble reshapes the flat batch into one Assessment per assessment id,
// preserving first-seen order. It verifies that every assessment covers the
// same dimension set and that all dimensions are declared in the rubric.
func (e *Evaluator) assemble(batch []model.GradeRecord) (map[string]*model.Assessment, []string, error) {
	assessments := make(map[string]*model.Assessment)
	var order []string

	for _, rec := range batch {
		if _, ok := e.diminfo[rec.DimensionID]; !ok {
			return nil, nil, fmt.Errorf("assessment %s: dimension %s: %w",
				rec.AssessmentID, rec.DimensionID, ErrUnknownDimension)
		}
		a, ok := assessments[rec.AssessmentID]
		if !ok {
			a = &model.Assessment{
				ID:           rec.AssessmentID,
				Weight:       rec.AssessmentWeight,
				ReviewerID:   rec.ReviewerID,
				SubmissionID: rec.SubmissionID,
				GradingGrade: rec.GradingGrade,
				DimGrades:    make(map[string]float64),
			}
			assessments[rec.AssessmentID] = a
			order = append(order, rec.AssessmentID)
		}
		// Last write wins for duplicate (assessment, dimension) pairs.
		a.DimGrades[rec.DimensionID] = rec.Grade
	}

	// Uniform dimension sets are a precondition of every later stage; fail
	// fast instead of guessing a join strategy.
	first := assessments[order[0]]
	for _, id := range order[1:] {
		a := assessments[id]
		if len(a.DimGrades) != len(first.DimGrades) {
			return nil, nil, fmt.Errorf("assessment %s: %w", id, ErrDimensionMismatch)
		}
		for dimid := range first.DimGrades {
			if _, ok := a.DimGrades[dimid]; !ok {
				return nil, nil, fmt.Errorf("assessment %s: missing dimension %s: %w",
					id, dimid, ErrDimensionMismatch)
			}
		}
	}
	return assessments, order, nil
}

// normalize rescales every raw grade onto the 0-100 range declared by its
// dimension, in place.
func (e *Evaluator) normalize(assessments map[string]*model.Assessment, order []string) error {
	for _, id := range order {
		a := assessments[id]
		for dimid, grade := range a.DimGrades {
			dim := e.diminfo[dimid]
			if dim.Max == dim.Min {
				return fmt.Errorf("dimension %s: %w", dimid, ErrInvalidScale)
			}
			a.DimGrades[dimid] = gradefloat.Round((grade - dim.Min) / (dim.Max - dim.Min) * 100)
		}
	}
	return nil
}

// averageAssessment builds the hypothetical average assessment of the batch,
// weighting every reviewer's grades by their assessment weight. Returns nil
// when the total weight is zero.
func averageAssessment(assessments map[string]*model.Assessment, order []string) *model.AverageAssessment {
	var sumWeight float64
	sums := make(map[string]float64)
	for _, id := range order {
		a := assessments[id]
		sumWeight += a.Weight
		for dimid, grade := range a.DimGrades {
			sums[dimid] += grade * a.Weight
		}
	}
	if sumWeight == 0 {
		return nil
	}
	avg := &model.AverageAssessment{DimGrades: make(map[string]float64, len(sums))}
	for dimid, sum := range sums {
		avg.DimGrades[dimid] = gradefloat.Round(sum / sumWeight)
	}
	return avg
}

// withVariances returns a copy of the rubric table with per-dimension batch
// variances populated from the normalized grades.
func (e *Evaluator) withVariances(assessments map[string]*model.Assessment, order []string) map[string]model.DimensionInfo {
	acc := make(map[string]*WeightedVariance, len(e.diminfo))
	for dimid := range e.diminfo {
		acc[dimid] = &WeightedVariance{}
	}
	for _, id := range order {
		a := assessments[id]
		for dimid, grade := range a.DimGrades {
			acc[dimid].Add(grade, a.Weight)
		}
	}
	diminfo := make(map[string]model.DimensionInfo, len(e.diminfo))
	for dimid, dim := range e.diminfo {
		dim.Variance = acc[dimid].Result()
		diminfo[dimid] = dim
	}
	return diminfo
}

// selectBest returns the ids of the assessments with the shortest distance to
// the average assessment. Ties are all kept. When no assessment has a
// measurable distance (every reviewer matches the average on every
// discriminating dimension) all assessments are equally good and all are
// returned.
func selectBest(assessments map[string]*model.Assessment, order []string, average *model.AverageAssessment, diminfo map[string]model.DimensionInfo, sensitivity float64) map[string]struct{} {
	distances := make(map[string]float64)
	min := 0.0
	for _, id := range order {
		d := Distance(assessments[id].DimGrades, average.DimGrades, diminfo, sensitivity)
		if d == nil {
			continue
		}
		if len(distances) == 0 || *d < min {
			min = *d
		}
		distances[id] = *d
	}

	best := make(map[string]struct{})
	if len(distances) == 0 {
		for _, id := range order {
			best[id] = struct{}{}
		}
		return best
	}
	for id, d := range distances {
		if d == min {
			best[id] = struct{}{}
		}
	}
	return best
}

// nearestBestDistance returns the minimum distance from a to any of the best
// assessments. A best assessment is at distance zero from itself. Nil means
// no best assessment shares a discriminating dimension with a, which is an
// absence of signal rather than a zero.
func nearestBestDistance(a *model.Assessment, best map[string]struct{}, assessments map[string]*model.Assessment, diminfo map[string]model.DimensionInfo, sensitivity float64) *float64 {
	if _, ok := best[a.ID]; ok {
		zero := 0.0
		return &zero
	}
	var nearest *float64
	for id := range best {
		d := Distance(a.DimGrades, assessments[id].DimGrades, diminfo, sensitivity)
		if d == nil {
			continue
		}
		if nearest == nil || *d < *nearest {
			nearest = d
		}
	}
	return nearest
}
