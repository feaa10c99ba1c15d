// Package service exposes the application-facing operations of the print
// pipeline: submitting a job, inspecting a job and listing jobs.
package service

import (
	"context"
	"fmt"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	repository "github.com/tigerroll/labelpress/pkg/print/core/domain/repository"
	metrics "github.com/tigerroll/labelpress/pkg/print/core/metrics"
	port "github.com/tigerroll/labelpress/pkg/print/core/port"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

// PrintService is the submission and inspection boundary of the pipeline.
type PrintService interface {
	// Submit records a new job and hands it to the worker pool. It returns
	// the created job record in its QUEUED state. A saturated queue is
	// reported as port.ErrQueueSaturated with no record left behind.
	Submit(ctx context.Context, req *model.PrintRequest) (*model.Job, error)

	// GetJob returns a snapshot of the job with the given identifier, or
	// repository.ErrJobNotFound.
	GetJob(ctx context.Context, jobID string) (*model.Job, error)

	// ListJobs returns job snapshots newest submission first, optionally
	// filtered by status. A positive limit caps the result size.
	ListJobs(ctx context.Context, status model.JobStatus, limit int) ([]*model.Job, error)
}

// DefaultPrintService is the default implementation of the PrintService
// interface.
type DefaultPrintService struct {
	store    repository.JobRepository
	enqueuer port.Enqueuer
	recorder metrics.MetricRecorder
}

// Verify that DefaultPrintService implements the PrintService interface.
var _ PrintService = (*DefaultPrintService)(nil)

// NewDefaultPrintService creates a new instance of DefaultPrintService.
func NewDefaultPrintService(
	store repository.JobRepository,
	enqueuer port.Enqueuer,
	recorder metrics.MetricRecorder,
) *DefaultPrintService {
	return &DefaultPrintService{
		store:    store,
		enqueuer: enqueuer,
		recorder: recorder,
	}
}

// Submit records the request and enqueues it for asynchronous processing.
// The returned snapshot is the job as it stood at submission; by the time the
// caller reads it, a worker may already have picked the job up.
func (s *DefaultPrintService) Submit(ctx context.Context, req *model.PrintRequest) (*model.Job, error) {
	jobID, err := s.store.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back submission %s: %w", jobID, err)
	}

	if err := s.enqueuer.Enqueue(jobID); err != nil {
		// The record was never visible as an accepted submission; roll it
		// back so a rejected request leaves no trace.
		if delErr := s.store.Delete(ctx, jobID); delErr != nil {
			logger.Errorf("PrintService: failed to roll back rejected submission %s: %v", jobID, delErr)
		}
		return nil, err
	}

	s.recorder.RecordJobSubmitted(ctx, job)
	logger.Infof("PrintService: accepted job %s (template '%s', %d rows, %d copies).",
		jobID, req.TemplateName, len(req.Rows), req.Copies)
	return job, nil
}

// GetJob returns a snapshot of one job.
func (s *DefaultPrintService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	return s.store.Get(ctx, jobID)
}

// ListJobs returns job snapshots newest submission first.
func (s *DefaultPrintService) ListJobs(ctx context.Context, status model.JobStatus, limit int) ([]*model.Job, error) {
	jobs, err := s.store.List(ctx, status)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}
