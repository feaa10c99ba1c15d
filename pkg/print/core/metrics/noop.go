package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
)

// NoOpMetricRecorder is an implementation of MetricRecorder that does
// nothing. It is used when metrics are disabled and during testing.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder {
	return &NoOpMetricRecorder{}
}

// RecordJobSubmitted does nothing.
func (r *NoOpMetricRecorder) RecordJobSubmitted(ctx context.Context, job *model.Job) {}

// RecordJobStart does nothing.
func (r *NoOpMetricRecorder) RecordJobStart(ctx context.Context, job *model.Job) {}

// RecordJobEnd does nothing.
func (r *NoOpMetricRecorder) RecordJobEnd(ctx context.Context, job *model.Job, duration time.Duration) {
}

// RecordQueueDepth does nothing.
func (r *NoOpMetricRecorder) RecordQueueDepth(ctx context.Context, depth int) {}

// RecordEviction does nothing.
func (r *NoOpMetricRecorder) RecordEviction(ctx context.Context, count int) {}

// RecordExecDuration does nothing.
func (r *NoOpMetricRecorder) RecordExecDuration(ctx context.Context, class model.ExecClass, duration time.Duration) {
}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// NoOpTracer is an implementation of Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

// StartJobSpan returns the context unchanged and a no-op finish function.
func (t *NoOpTracer) StartJobSpan(ctx context.Context, job *model.Job) (context.Context, func()) {
	return ctx, func() {}
}

// RecordError does nothing.
func (t *NoOpTracer) RecordError(ctx context.Context, module string, err error) {}

var _ Tracer = (*NoOpTracer)(nil)
