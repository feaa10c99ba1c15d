package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"

	config "github.com/tigerroll/labelpress/pkg/print/core/config"
	logger "github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

// NewTracerProvider creates the application's TracerProvider. With no
// collector endpoint configured it returns a no-op provider, so span
// creation stays cheap and nothing is exported. With an endpoint it exports
// batches over OTLP/HTTP and flushes on shutdown.
func NewTracerProvider(lc fx.Lifecycle, cfg *config.Config) (trace.TracerProvider, error) {
	endpoint := cfg.Labelpress.Tracing.Endpoint
	if endpoint == "" {
		logger.Debugf("Tracing: no collector endpoint configured, span export disabled.")
		return noop.NewTracerProvider(), nil
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", "labelpressd"),
		)),
	)
	otel.SetTracerProvider(tp)
	logger.Infof("Tracing: exporting spans to OTLP collector at %s.", endpoint)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return tp, nil
}
