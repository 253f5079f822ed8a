// Package telemetry wires OpenTelemetry trace export for the process.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config controls OTLP trace export.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/HTTP collector address, host:port.
	Endpoint string `yaml:"otlp_endpoint"`

	// Insecure disables TLS toward the collector.
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces to sample, 0..1.
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Defaults fills zero values with sensible defaults.
func (c *Config) Defaults() {
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		c.SampleRatio = 1
	}
}

// Setup installs a global tracer provider exporting to the configured
// collector. The returned shutdown function flushes pending spans; it
// is a no-op when telemetry is disabled.
func Setup(ctx context.Context, cfg Config, version string, logger *slog.Logger) (func(context.Context) error, error) {
	cfg.Defaults()
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("recall"),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: building resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	if logger != nil {
		logger.Info("telemetry enabled", "endpoint", cfg.Endpoint, "sample_ratio", cfg.SampleRatio)
	}

	return tp.Shutdown, nil
}
