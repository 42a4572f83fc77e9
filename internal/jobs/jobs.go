// Package jobs defines the asynchronous dispatch contract for import
// processing. The pipeline itself never retries; whatever consumes these jobs
// owns retry and failure logging.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProcessImportJob asks a worker to run the import pipeline for one import.
type ProcessImportJob struct {
	JobID     string    `json:"job_id"`
	ImportID  uuid.UUID `json:"import_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher enqueues import jobs. Implementations may be in-memory or backed
// by an external broker.
type Publisher interface {
	PublishProcessImport(ctx context.Context, job *ProcessImportJob) error
	Close() error
}

// Consumer pulls jobs and hands them to a handler.
type Consumer interface {
	// Start begins consuming; the handler is invoked for each job received.
	Start(ctx context.Context, handler Handler) error

	// Stop stops consuming and waits for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// Handler processes one job. A returned error means the job failed; the
// consumer decides what, if anything, to do about it.
type Handler func(ctx context.Context, job *ProcessImportJob) error
