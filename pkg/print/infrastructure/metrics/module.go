package metrics

import (
	"go.uber.org/fx"

	metrics "github.com/tigerroll/labelpress/pkg/print/core/metrics"
)

// Module provides the Prometheus recorder and the OpenTelemetry tracer. The
// concrete recorder stays available so the HTTP boundary can expose its
// registry on the metrics endpoint.
var Module = fx.Options(
	fx.Provide(NewPrometheusRecorder),
	fx.Provide(func(r *PrometheusRecorder) metrics.MetricRecorder { return r }),
	fx.Provide(NewTracerProvider),
	fx.Provide(fx.Annotate(
		NewOpenTelemetryTracer,
		fx.As(new(metrics.Tracer)),
	)),
)
