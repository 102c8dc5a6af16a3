// Package seeding generates synthetic rubrics, assessments, and grades for
// load testing and local development.
package seeding

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/google/uuid"
	"github.com/okian/peergrade/internal/domain/model"
	"github.com/okian/peergrade/pkg/logger"
)

// Rubric scale choices for generated dimensions.
var scaleChoices = []float64{10, 20, 100} //nolint:gochecknoglobals // fixed generation table

// Dimension weight range for generated rubrics.
const (
	minDimensionWeight = 1
	maxDimensionWeight = 3
)

// Writer is the subset of the store the generator needs.
type Writer interface {
	PutDimension(ctx context.Context, dim model.DimensionInfo) error
	PutAssessment(ctx context.Context, id, submissionID, reviewerID string, weight float64) error
	PutGrade(ctx context.Context, assessmentID, dimensionID string, grade float64) error
}

type dimension struct {
	id     string
	weight float64
	min    float64
	max    float64
}

// Generate populates the store with cfg.NumSubmissions submissions, each
// assessed by cfg.ReviewersPerSubmission reviewers. Every submission has a
// hidden true quality per dimension; each reviewer reports it with noise, so
// honest reviewers cluster and the evaluator has something to find.
func Generate(ctx context.Context, cfg Config, w Writer) (Stats, error) {
	stats := Stats{}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible test data, not security

	logger.Get().Info(ctx, "seeding assessment data",
		logger.Int("dimensions", cfg.NumDimensions),
		logger.Int("submissions", cfg.NumSubmissions),
		logger.Int("reviewersPerSubmission", cfg.ReviewersPerSubmission),
	)

	dims := make([]dimension, cfg.NumDimensions)
	for i := range dims {
		max := scaleChoices[rng.Intn(len(scaleChoices))]
		dims[i] = dimension{
			id:     "dim_" + strconv.Itoa(i+1),
			weight: float64(minDimensionWeight + rng.Intn(maxDimensionWeight-minDimensionWeight+1)),
			min:    0,
			max:    max,
		}
		info := model.DimensionInfo{
			ID:     dims[i].id,
			Weight: dims[i].weight,
			Min:    dims[i].min,
			Max:    dims[i].max,
		}
		if err := w.PutDimension(ctx, info); err != nil {
			return stats, fmt.Errorf("put dimension %s: %w", dims[i].id, err)
		}
		stats.Dimensions++
	}

	// A fixed reviewer pool; each submission draws its reviewers from it.
	poolSize := cfg.ReviewersPerSubmission * 2
	reviewers := make([]string, poolSize)
	for i := range reviewers {
		reviewers[i] = uuid.New().String()
	}

	for s := 0; s < cfg.NumSubmissions; s++ {
		submissionID := uuid.New().String()
		stats.Submissions++

		// Hidden true quality per dimension, kept away from the scale edges
		// so noisy grades stay in range.
		truth := make([]float64, len(dims))
		for i, d := range dims {
			span := d.max - d.min
			truth[i] = d.min + span*(0.2+0.6*rng.Float64())
		}

		offset := rng.Intn(poolSize)
		for r := 0; r < cfg.ReviewersPerSubmission; r++ {
			reviewerID := reviewers[(offset+r)%poolSize]
			assessmentID := uuid.New().String()
			if err := w.PutAssessment(ctx, assessmentID, submissionID, reviewerID, 1); err != nil {
				return stats, fmt.Errorf("put assessment %s: %w", assessmentID, err)
			}
			stats.Assessments++

			for i, d := range dims {
				span := d.max - d.min
				grade := truth[i] + (rng.Float64()*2-1)*cfg.Noise*span
				grade = clamp(grade, d.min, d.max)
				if err := w.PutGrade(ctx, assessmentID, d.id, grade); err != nil {
					return stats, fmt.Errorf("put grade for %s/%s: %w", assessmentID, d.id, err)
				}
				stats.Grades++
			}
		}
	}

	logger.Get().Info(ctx, "seeding finished",
		logger.Int("assessments", stats.Assessments),
		logger.Int("grades", stats.Grades),
	)
	return stats, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
