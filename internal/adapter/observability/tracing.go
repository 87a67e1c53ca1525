// Package observability wires the process-wide logger, Prometheus
// collectors and the OpenTelemetry tracer provider.
package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/fairyhunter13/jobtrackr/internal/config"
)

// Resource attributes describing how this jobtrackr instance is wired.
const (
	AttrStorage      = attribute.Key("jobtrackr.storage")
	AttrEvents       = attribute.Key("jobtrackr.events")
	AttrAuthRequired = attribute.Key("jobtrackr.auth_required")
)

// SetupTracing exports spans over OTLP/gRPC when an endpoint is configured
// and installs the provider globally, so mediator dispatches, repository
// calls and broker produces all land in one trace per request. Returns the
// provider's shutdown func, or nil when tracing is disabled.
func SetupTracing(cfg config.Config) (func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		slog.Info("OTLP endpoint not set; tracing disabled")
		return nil, nil
	}

	exporter, err := otlptracegrpc.New(context.Background(), otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint), otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("op=observability.SetupTracing: %w", err)
	}
	tp, err := newTracerProvider(cfg, exporter)
	if err != nil {
		return nil, fmt.Errorf("op=observability.SetupTracing: %w", err)
	}
	slog.Info("tracing configured",
		slog.String("endpoint", cfg.OTLPEndpoint),
		slog.Float64("sampling_ratio", samplingRatio(cfg)))

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}

func newTracerProvider(cfg config.Config, exporter sdktrace.SpanExporter) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(context.Background(), resource.WithAttributes(serviceAttributes(cfg)...))
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(samplingRatio(cfg)))),
	), nil
}

func serviceAttributes(cfg config.Config) []attribute.KeyValue {
	storage := "memory"
	if cfg.UsesPostgres() {
		storage = "postgres"
	}
	events := "disabled"
	if cfg.EventsEnabled() {
		events = cfg.EventsTopic
	}
	return []attribute.KeyValue{
		semconv.ServiceNameKey.String(cfg.OTELServiceName),
		semconv.DeploymentEnvironmentKey.String(cfg.AppEnv),
		AttrStorage.String(storage),
		AttrEvents.String(events),
		AttrAuthRequired.Bool(cfg.AuthRequired),
	}
}

// samplingRatio keeps 10% of root traces in prod and all of them elsewhere.
func samplingRatio(cfg config.Config) float64 {
	if cfg.IsProd() {
		return 0.1
	}
	return 1.0
}
