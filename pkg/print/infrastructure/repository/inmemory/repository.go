// Package inmemory provides the in-memory implementation of the
// JobRepository interface. All job lifecycle state lives in a mutex-guarded
// map; nothing survives a process restart.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	repository "github.com/tigerroll/labelpress/pkg/print/core/domain/repository"
	"github.com/tigerroll/labelpress/pkg/print/support/util/exception"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

const moduleName = "job_store"

// InMemoryJobRepository is the in-memory implementation of the JobRepository
// interface. The map is the single piece of shared mutable state of the
// pipeline; every access goes through the mutex so lifecycle transitions,
// listing and eviction never observe torn records.
type InMemoryJobRepository struct {
	jobs map[string]*model.Job
	mu   sync.RWMutex
}

// Verify that InMemoryJobRepository implements the JobRepository interface.
var _ repository.JobRepository = (*InMemoryJobRepository)(nil)

// NewInMemoryJobRepository creates and initializes a new instance of
// InMemoryJobRepository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobs: make(map[string]*model.Job),
	}
}

// Create inserts a new job record in the QUEUED state and returns its
// identifier.
func (r *InMemoryJobRepository) Create(ctx context.Context, req *model.PrintRequest) (string, error) {
	job := model.NewJob(req)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job

	logger.Debugf("Job store: created job %s (template '%s', %d rows).", job.ID, req.TemplateName, len(req.Rows))
	return job.ID, nil
}

// MarkRunning transitions a job from QUEUED to RUNNING.
func (r *InMemoryJobRepository) MarkRunning(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return repository.ErrJobNotFound
	}
	if err := job.TransitionTo(model.JobStatusRunning); err != nil {
		// A job that is no longer QUEUED here means two owners processed the
		// same identifier: an internal-consistency fault, not a user error.
		return exception.New(moduleName, exception.KindInternal, "markRunning rejected", err)
	}
	return nil
}

// MarkSucceeded transitions a job from RUNNING to SUCCEEDED.
func (r *InMemoryJobRepository) MarkSucceeded(ctx context.Context, jobID string, outputPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return repository.ErrJobNotFound
	}
	if err := job.MarkAsSucceeded(outputPath); err != nil {
		return exception.New(moduleName, exception.KindInternal, "markSucceeded rejected", err)
	}
	return nil
}

// MarkFailed transitions a job from RUNNING to FAILED.
func (r *InMemoryJobRepository) MarkFailed(ctx context.Context, jobID string, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return repository.ErrJobNotFound
	}
	if err := job.MarkAsFailed(summary); err != nil {
		return exception.New(moduleName, exception.KindInternal, "markFailed rejected", err)
	}
	return nil
}

// Delete removes a job record regardless of its state. Used by the
// submitting boundary to roll back a record the queue rejected.
func (r *InMemoryJobRepository) Delete(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[jobID]; !ok {
		return repository.ErrJobNotFound
	}
	delete(r.jobs, jobID)
	logger.Debugf("Job store: deleted job %s.", jobID)
	return nil
}

// Get returns a copy of the job with the given identifier.
func (r *InMemoryJobRepository) Get(ctx context.Context, jobID string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	// Deep copy to prevent external modification of internal state.
	return job.Clone(), nil
}

// List returns copies of stored jobs, newest submission first. A non-empty
// status filters the result.
func (r *InMemoryJobRepository) List(ctx context.Context, status model.JobStatus) ([]*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*model.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		if status != "" && job.Status != status {
			continue
		}
		jobs = append(jobs, job.Clone())
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[j].SubmittedAt.Before(jobs[i].SubmittedAt)
	})
	return jobs, nil
}

// EvictOlderThan removes terminal jobs whose completion timestamp predates
// now-age and returns the evicted records. Non-terminal jobs are never
// evicted regardless of age.
func (r *InMemoryJobRepository) EvictOlderThan(ctx context.Context, age time.Duration) ([]*model.Job, error) {
	cutoff := time.Now().Add(-age)

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []*model.Job
	for id, job := range r.jobs {
		if !job.Status.IsTerminal() {
			continue
		}
		if job.CompletedAt == nil || !job.CompletedAt.Before(cutoff) {
			continue
		}
		evicted = append(evicted, job)
		delete(r.jobs, id)
		logger.Debugf("Job store: evicted expired job %s (completed %v).", id, job.CompletedAt)
	}
	return evicted, nil
}

// Close releases resources used by the repository. As an in-memory store it
// holds no external resources, so this method always returns nil.
func (r *InMemoryJobRepository) Close() error {
	return nil
}
