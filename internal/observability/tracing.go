// Package observability wires OpenTelemetry tracing into the generation
// runtime. Spans are exported over OTLP HTTP to a local collector, which
// handles authentication and forwarding to the tracing backend.
package observability

import (
	"context"
	"os"

	"github.com/firebase/genkit/go/core/tracing"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pchen41/gauntlet-reel-app/internal/config"
	"github.com/pchen41/gauntlet-reel-app/internal/log"
)

// DefaultCollectorHost is the default OTLP HTTP endpoint.
const DefaultCollectorHost = "localhost:4318"

// Setup registers an OTLP exporter with Genkit's TracerProvider, so flow
// and model spans reach the collector. Returns a shutdown function that
// flushes pending spans.
//
// A collector connection failure disables tracing rather than failing
// startup.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger log.Logger) (shutdown func(context.Context) error, err error) {
	collectorHost := cfg.CollectorHost
	if collectorHost == "" {
		collectorHost = DefaultCollectorHost
	}

	// Genkit's TracerProvider reads the service identity from the
	// standard OTEL environment variables.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(collectorHost),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("failed to create trace exporter, tracing disabled", "error", err)
		return func(context.Context) error { return nil }, nil
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("tracing enabled",
		"collector", collectorHost,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return tracing.TracerProvider().Shutdown, nil
}
