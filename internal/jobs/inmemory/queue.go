// Package inmemory is a channel-backed job queue for single-instance
// deployments and tests. Swap it for a broker-backed implementation to scale
// out; the handler contract stays the same.
package inmemory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vendasapp/sales-import/internal/jobs"
)

// Queue implements jobs.Publisher and jobs.Consumer over a buffered channel
// with a fixed worker pool. Safe for concurrent use.
type Queue struct {
	jobChan   chan *jobs.ProcessImportJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	workers   int
	logger    *slog.Logger
	closed    bool
}

// NewQueue creates a queue. bufferSize bounds how many jobs can be pending
// before publishing blocks; workers is the number of concurrent handlers.
func NewQueue(bufferSize, workers int, logger *slog.Logger) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		jobChan:   make(chan *jobs.ProcessImportJob, bufferSize),
		closeChan: make(chan struct{}),
		workers:   workers,
		logger:    logger,
	}
}

// PublishProcessImport enqueues an import job, blocking while the buffer is
// full. Publishing to a closed queue is an error.
func (q *Queue) PublishProcessImport(ctx context.Context, job *jobs.ProcessImportJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start launches the worker pool.
func (q *Queue) Start(ctx context.Context, handler jobs.Handler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.Handler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			q.drain(ctx, handler)
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.runJob(ctx, job, handler)
		}
	}
}

// drain runs the jobs still buffered when the queue closed. Close already
// rejects new publishes, so the buffer only shrinks; ctx still bounds the
// remaining work.
func (q *Queue) drain(ctx context.Context, handler jobs.Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.runJob(ctx, job, handler)
		default:
			return
		}
	}
}

// runJob executes the handler. Failures are logged here, and only here: the
// pipeline already left the import in a terminal state.
func (q *Queue) runJob(ctx context.Context, job *jobs.ProcessImportJob, handler jobs.Handler) {
	log := q.logger.With("job_id", job.JobID, "import_id", job.ImportID)
	start := time.Now()

	if err := handler(ctx, job); err != nil {
		log.Error("import job failed", "error", err, "duration", time.Since(start))
		return
	}
	log.Info("import job completed", "duration", time.Since(start))
}

// Close stops accepting jobs and releases waiting publishers.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.closeChan)
	return nil
}

// Stop closes the queue and waits for in-flight jobs, bounded by ctx.
func (q *Queue) Stop(ctx context.Context) error {
	_ = q.Close()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
