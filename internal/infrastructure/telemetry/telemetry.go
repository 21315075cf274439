// Package telemetry wires OpenTelemetry traces, metrics and logs.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/infrastructure/config"
)

// shutdownTimeout bounds how long each provider may spend flushing
const shutdownTimeout = 10 * time.Second

// Providers groups the three OTLP pipelines and the profiler so they start and stop together
type Providers struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
}

// Setup starts every provider. When telemetry is disabled each provider is a no-op.
// Profiling is switched on separately and links spans to profiles when both run.
func Setup(ctx context.Context, cfg config.TelemetryConfig, version string, logger *zap.Logger) (*Providers, error) {
	res, err := newResource(cfg.ServiceName, version)
	if err != nil {
		return nil, err
	}

	tp, err := NewTracerProvider(ctx, cfg, res, logger)
	if err != nil {
		return nil, err
	}
	mp, err := NewMeterProvider(ctx, cfg, res, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	lp, err := NewLoggerProvider(ctx, cfg, res, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, err
	}
	profiler, err := NewProfiler(cfg, version, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		_ = lp.Shutdown(ctx)
		return nil, err
	}
	if profiler.IsEnabled() {
		tp.EnableSpanProfiles()
	}
	return &Providers{Tracer: tp, Meter: mp, Logs: lp, Profiler: profiler}, nil
}

// Shutdown flushes and stops the providers, logs last so the others can still log
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Tracer.Shutdown(ctx),
		p.Meter.Shutdown(ctx),
		p.Profiler.Stop(),
		p.Logs.Shutdown(ctx),
	)
}

func newResource(serviceName, version string) (*resource.Resource, error) {
	if serviceName == "" {
		serviceName = "wms-backend"
	}
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
