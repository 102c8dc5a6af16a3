// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/peergrade/internal/adapters/mq/queue"
	workerpool "github.com/okian/peergrade/internal/adapters/mq/worker"
	"github.com/okian/peergrade/internal/adapters/repository"
	"github.com/okian/peergrade/internal/domain/evaluate"
	"github.com/okian/peergrade/internal/domain/model"
	"github.com/okian/peergrade/internal/domain/types"
	"github.com/okian/peergrade/pkg/logger"
	"github.com/okian/peergrade/pkg/metrics"
)

// Service orchestrates grading-grade recalculation over an assessment store.
type Service struct {
	// Recalculations are serialized; concurrent triggers would race on
	// the same grading grades without improving the outcome.
	mu sync.Mutex

	store repository.Store

	// Configuration
	workerCount int
	queueSize   int
	sensitivity float64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the assessment store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of evaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the batch queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSensitivity sets the grading comparison divisor.
func WithSensitivity(v float64) Option {
	return func(s *Service) {
		if v > 0 {
			s.sensitivity = v
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		sensitivity: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Recalculate recomputes grading grades for every submission whose
// assessments match restrict (nil or empty means all reviewers). Each
// submission batch is evaluated independently; batches are spread across the
// worker pool while the record stream is grouped on the fly. All resulting
// updates are applied through the sink as one bulk write at the end, so a
// failed run leaves the stored grades untouched.
func (s *Service) Recalculate(ctx context.Context, restrict []string) (types.RecalcSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	summary := types.RecalcSummary{}

	diminfo, err := s.store.DimensionsInfo(ctx)
	if err != nil {
		return summary, fmt.Errorf("load dimensions: %w", err)
	}

	evaluator := evaluate.New(diminfo, evaluate.WithSensitivity(s.sensitivity))

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	results := make(chan evaluate.BatchResult, s.workerCount)
	pool := workerpool.NewPool(s.workerCount, q, evaluator, results,
		workerpool.WithLogger(s.logger),
	)

	pool.Start(ctx)

	// Collect results while the workers run.
	var updates []model.GradingGradeUpdate
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range results {
			summary.Batches++
			if res.Skipped {
				summary.Skipped++
			}
			summary.Assessments += res.Assessments
			updates = append(updates, res.Updates...)
			metrics.RecordAssessmentsEvaluated(res.Assessments)
		}
	}()

	// Group the record stream into per-submission batches and feed the
	// queue. The source guarantees contiguity per submission id.
	grouper := evaluate.NewGrouper(func(batch []model.GradeRecord) error {
		return q.Enqueue(ctx, queue.Batch{
			SubmissionID: batch[0].SubmissionID,
			Records:      batch,
		})
	})
	streamErr := s.store.AssessmentRecords(ctx, restrict, grouper.Push)
	if streamErr == nil {
		streamErr = grouper.Flush()
	}
	_ = q.Close()

	poolErr := pool.Wait()
	<-collected

	if poolErr == nil {
		poolErr = streamErr
	}
	if poolErr != nil {
		if errors.Is(poolErr, evaluate.ErrInvalidScale) || errors.Is(poolErr, evaluate.ErrDimensionMismatch) || errors.Is(poolErr, evaluate.ErrUnknownDimension) {
			metrics.RecordRubricError()
		}
		return summary, fmt.Errorf("recalculate grading grades: %w", poolErr)
	}

	if err := s.store.ApplyGradingGrades(ctx, updates); err != nil {
		return summary, fmt.Errorf("apply grading grades: %w", err)
	}
	summary.Updates = len(updates)
	summary.DurationMS = time.Since(start).Milliseconds()
	metrics.RecordGradeUpdates(len(updates))

	s.logger.Info(ctx, "recalculation finished",
		logger.Int("batches", summary.Batches),
		logger.Int("skipped", summary.Skipped),
		logger.Int("assessments", summary.Assessments),
		logger.Int("updates", summary.Updates),
	)
	return summary, nil
}

// TopReviewers returns up to n reviewers ranked by mean grading grade.
func (s *Service) TopReviewers(ctx context.Context, n int) ([]types.ReviewerStanding, error) {
	standings, err := s.store.TopReviewers(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("top reviewers: %w", err)
	}
	return standings, nil
}

// AssessmentGrade returns the stored grading grade of one assessment.
func (s *Service) AssessmentGrade(ctx context.Context, assessmentID string) (types.AssessmentGrade, error) {
	ag, err := s.store.AssessmentGrade(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return types.AssessmentGrade{}, err
		}
		return types.AssessmentGrade{}, fmt.Errorf("assessment grade: %w", err)
	}
	return ag, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	reviewers := s.store.CountReviewers(ctx)
	metrics.UpdateTotalReviewers(reviewers)
	return map[string]interface{}{
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"sensitivity":    s.sensitivity,
		"totalReviewers": reviewers,
	}
}
