// Package repository defines the persistence boundary of the job store.
// The store is the single authoritative owner of job lifecycle state; all
// implementations must be safe for concurrent use by the worker pool, the
// retention sweeper and the request-handling boundary.
package repository

import (
	"context"
	"errors"
	"time"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
)

// ErrJobNotFound is the error returned when a job identifier is unknown to
// the store.
var ErrJobNotFound = errors.New("job not found")

// JobRepository defines the operations of the authoritative job store.
//
// Lifecycle mutations (MarkRunning, MarkSucceeded, MarkFailed) validate the
// QUEUED -> RUNNING -> terminal ordering; a violation indicates an
// internal-consistency fault in the caller and is returned as an error rather
// than silently applied.
type JobRepository interface {
	// Create inserts a new job record in the QUEUED state and returns its
	// identifier. Request validation is the submitting boundary's concern;
	// Create itself always succeeds for a well-formed record.
	Create(ctx context.Context, req *model.PrintRequest) (string, error)

	// MarkRunning transitions a job from QUEUED to RUNNING.
	MarkRunning(ctx context.Context, jobID string) error

	// MarkSucceeded transitions a job from RUNNING to SUCCEEDED, recording
	// the artifact location and completion timestamp.
	MarkSucceeded(ctx context.Context, jobID string, outputPath string) error

	// MarkFailed transitions a job from RUNNING to FAILED, recording the
	// failure summary and completion timestamp.
	MarkFailed(ctx context.Context, jobID string, summary string) error

	// Delete removes a job record regardless of its state. It exists so the
	// submitting boundary can roll back a record whose enqueue was rejected;
	// it is not part of the normal lifecycle.
	Delete(ctx context.Context, jobID string) error

	// Get returns a copy of the job with the given identifier, or
	// ErrJobNotFound.
	Get(ctx context.Context, jobID string) (*model.Job, error)

	// List returns copies of stored jobs, newest submission first. A
	// non-empty status filters the result.
	List(ctx context.Context, status model.JobStatus) ([]*model.Job, error)

	// EvictOlderThan removes terminal jobs whose completion timestamp
	// predates now-age and returns the evicted records so the caller can
	// clean up their artifacts. Non-terminal jobs are never evicted.
	EvictOlderThan(ctx context.Context, age time.Duration) ([]*model.Job, error)

	// Close releases resources held by the store.
	Close() error
}
