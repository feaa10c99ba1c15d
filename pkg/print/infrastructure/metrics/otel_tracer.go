package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	metrics "github.com/tigerroll/labelpress/pkg/print/core/metrics"
)

// tracerName identifies the instrumentation scope of spans emitted by the
// print pipeline.
const tracerName = "github.com/tigerroll/labelpress/pkg/print"

// OpenTelemetryTracer is an implementation of the metrics.Tracer interface
// using OpenTelemetry.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer creates a new instance of OpenTelemetryTracer using
// the given provider.
func NewOpenTelemetryTracer(tp trace.TracerProvider) *OpenTelemetryTracer {
	return &OpenTelemetryTracer{
		tracer: tp.Tracer(tracerName),
	}
}

// StartJobSpan starts a span covering one render attempt.
func (t *OpenTelemetryTracer) StartJobSpan(ctx context.Context, job *model.Job) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "print.render",
		trace.WithAttributes(
			attribute.String("print.job.id", job.ID),
			attribute.String("print.job.template", job.Request.TemplateName),
			attribute.Int("print.job.rows", len(job.Request.Rows)),
			attribute.Int("print.job.copies", job.Request.Copies),
		),
	)
	return ctx, func() { span.End() }
}

// RecordError records an error in the current span.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err, trace.WithAttributes(attribute.String("module", module)))
	span.SetStatus(codes.Error, err.Error())
}

var _ metrics.Tracer = (*OpenTelemetryTracer)(nil)
