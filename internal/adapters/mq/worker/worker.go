// Package worker runs the evaluation worker pool. Submissions are evaluated
// in parallel across workers; within one batch the evaluation stages stay
// strictly sequential.
package worker

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/okian/peergrade/internal/adapters/mq/queue"
	"github.com/okian/peergrade/internal/domain/evaluate"
	"github.com/okian/peergrade/internal/domain/model"
	"github.com/okian/peergrade/pkg/logger"
	"github.com/okian/peergrade/pkg/metrics"
)

// Evaluator is the per-batch computation the workers execute.
type Evaluator interface {
	ProcessBatch(batch []model.GradeRecord) (evaluate.BatchResult, error)
}

// Pool consumes batches from a queue, evaluates them, and streams the
// results to a collector channel. After the first evaluation failure the
// remaining batches are drained without work so the producer never blocks on
// a full queue; Wait reports that first error.
type Pool struct {
	workers   int
	queue     queue.Queue
	evaluator Evaluator
	results   chan<- evaluate.BatchResult

	wg       sync.WaitGroup
	once     sync.Once
	err      error
	failedCh chan struct{}

	logger logger.Logger
}

// NewPool creates an evaluation pool writing results to results.
func NewPool(workers int, q queue.Queue, ev Evaluator, results chan<- evaluate.BatchResult, opts ...Option) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		workers:   workers,
		queue:     q,
		evaluator: ev,
		results:   results,
		failedCh:  make(chan struct{}),
		logger:    logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. They run until the queue is closed and
// drained or ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	metrics.UpdateWorkerCount(p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

// Wait blocks until all workers have stopped, closes the results channel,
// and returns the first evaluation error, if any.
func (p *Pool) Wait() error {
	p.wg.Wait()
	close(p.results)
	metrics.UpdateWorkerCount(0)
	return p.err
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			p.fail(ctx.Err())
			return
		case batch, ok := <-p.queue.Dequeue():
			if !ok {
				return
			}
			if p.failed() {
				// Drain without evaluating; the run is already lost.
				continue
			}
			if err := p.processBatch(ctx, batch); err != nil {
				p.fail(err)
			}
		}
	}
}

func (p *Pool) processBatch(ctx context.Context, batch queue.Batch) error {
	start := time.Now()
	res, err := p.evaluator.ProcessBatch(batch.Records)
	metrics.RecordBatchLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordEvaluationError()
		p.logger.Error(ctx, "batch evaluation failed",
			logger.String("submissionID", batch.SubmissionID),
			logger.Error(err),
		)
		return err
	}
	if res.Skipped {
		metrics.RecordBatchSkipped()
	} else {
		metrics.RecordBatchEvaluated()
	}

	select {
	case p.results <- res:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fail records the first error; later errors are dropped.
func (p *Pool) fail(err error) {
	if err == nil {
		return
	}
	p.once.Do(func() {
		p.err = err
		close(p.failedCh)
	})
}

func (p *Pool) failed() bool {
	select {
	case <-p.failedCh:
		return true
	default:
		return false
	}
}
