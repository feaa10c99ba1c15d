// Package metrics defines the abstract observability interfaces of the print
// pipeline. Concrete implementations (Prometheus, OpenTelemetry) live in the
// infrastructure layer; no-op fallbacks are provided here so the engine never
// has to nil-check its recorder.
package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
)

// MetricRecorder is an abstract interface for recording metrics of the job
// pipeline. It standardizes submission, lifecycle, queue and eviction events
// so different backends can be plugged in.
type MetricRecorder interface {
	// RecordJobSubmitted records one accepted submission.
	RecordJobSubmitted(ctx context.Context, job *model.Job)

	// RecordJobStart records a worker picking a job up.
	RecordJobStart(ctx context.Context, job *model.Job)

	// RecordJobEnd records a job reaching a terminal state, with its
	// processing duration.
	RecordJobEnd(ctx context.Context, job *model.Job, duration time.Duration)

	// RecordQueueDepth records the current number of pending submissions.
	RecordQueueDepth(ctx context.Context, depth int)

	// RecordEviction records the number of jobs removed by one retention
	// sweep tick.
	RecordEviction(ctx context.Context, count int)

	// RecordExecDuration records the wall-clock duration of one external
	// renderer execution, tagged with its classification.
	RecordExecDuration(ctx context.Context, class model.ExecClass, duration time.Duration)
}

// Tracer is an abstract interface for distributed tracing of render
// attempts.
type Tracer interface {
	// StartJobSpan starts a span covering one render attempt.
	// It returns a context carrying the span and a function to end it; the
	// returned function should be called in a defer statement.
	StartJobSpan(ctx context.Context, job *model.Job) (context.Context, func())

	// RecordError records an error on the current span.
	RecordError(ctx context.Context, module string, err error)
}
