// Package telemetry exports service use-case metrics over OTLP/gRPC.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/alexanderramin/taskup/internal/config"
	"github.com/alexanderramin/taskup/internal/service"
)

// ErrDisabled is returned by New when telemetry is switched off.
var ErrDisabled = errors.New("telemetry disabled or endpoint not configured")

// Recorder turns service use-case events into OTel instruments. It
// implements service.UseCaseObserver.
type Recorder struct {
	provider    *sdkmetric.MeterProvider
	calls       metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
	allocations metric.Float64Histogram
}

// New dials the configured collector and returns a recorder that pushes
// on the SDK's periodic interval.
func New(ctx context.Context, cfg config.TelemetryConfig) (*Recorder, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, ErrDisabled
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure(),
		)
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	return NewWithReader(ctx, cfg.ServiceName, sdkmetric.NewPeriodicReader(exp))
}

// NewWithReader builds a recorder on an arbitrary reader. Tests pass a
// manual reader.
func NewWithReader(ctx context.Context, serviceName string, reader sdkmetric.Reader) (*Recorder, error) {
	if serviceName == "" {
		serviceName = config.DefaultServiceName
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	r := &Recorder{provider: provider}
	if r.calls, err = meter.Int64Counter(
		"taskup_use_case_calls_total",
		metric.WithDescription("Service use cases executed"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, fmt.Errorf("creating calls counter: %w", err)
	}
	if r.failures, err = meter.Int64Counter(
		"taskup_use_case_failures_total",
		metric.WithDescription("Service use cases that returned an error"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}
	if r.duration, err = meter.Float64Histogram(
		"taskup_use_case_duration_seconds",
		metric.WithDescription("Service use case latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	if r.allocations, err = meter.Float64Histogram(
		"taskup_stakeholder_allocated_percent",
		metric.WithDescription("Project allocation total after a stakeholder write"),
		metric.WithUnit("%"),
	); err != nil {
		return nil, fmt.Errorf("creating allocation histogram: %w", err)
	}
	return r, nil
}

func (r *Recorder) ObserveUseCase(ctx context.Context, event service.UseCaseEvent) {
	opt := metric.WithAttributes(
		attribute.String("use_case", event.Name),
		attribute.Bool("success", event.Success),
	)
	r.calls.Add(ctx, 1, opt)
	if !event.Success {
		r.failures.Add(ctx, 1, opt)
	}
	r.duration.Record(ctx, event.Duration.Seconds(), opt)

	if total, ok := event.Fields["allocated_total"].(float64); ok && event.Success {
		r.allocations.Record(ctx, total, metric.WithAttributes(attribute.String("use_case", event.Name)))
	}
}

// Close flushes pending metrics and shuts the provider down.
func (r *Recorder) Close(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

var _ service.UseCaseObserver = (*Recorder)(nil)
