package metrics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const exportInterval = 10 * time.Second

// Instruments holds the HTTP server instruments.
type Instruments struct {
	// Counters
	RequestsTotal metric.Int64Counter
	ErrorsTotal   metric.Int64Counter

	// Gauges (implemented as UpDownCounters)
	ActiveRequests metric.Int64UpDownCounter

	// Histograms
	RequestDuration metric.Float64Histogram
	ResponseSize    metric.Int64Histogram
}

// Initialize sets up the OTEL SDK meter provider and installs it globally.
// If endpoint is empty, metrics are exported to stdout.
func Initialize(ctx context.Context, lg *slog.Logger, serviceName, version, endpoint string) (metric.Meter, func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := newExporter(ctx, lg, endpoint, os.Stdout)
	if err != nil {
		return nil, nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(exportInterval),
			),
		),
	)

	otel.SetMeterProvider(meterProvider)
	return meterProvider.Meter(serviceName), meterProvider.Shutdown, nil
}

func newExporter(ctx context.Context, lg *slog.Logger, endpoint string, stdout io.Writer) (sdkmetric.Exporter, error) {
	if endpoint == "" {
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(stdout))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		lg.Info("OTEL metrics initialized, exporting to stdout")
		return exporter, nil
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	lg.Info("OTEL metrics initialized, pushing to collector", "endpoint", endpoint)
	return exporter, nil
}

// New creates all request instruments on meter.
func New(meter metric.Meter) (*Instruments, error) {
	var (
		inst Instruments
		err  error
	)

	inst.RequestsTotal, err = meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	inst.ErrorsTotal, err = meter.Int64Counter(
		"http.errors.total",
		metric.WithDescription("Total number of HTTP responses with status >= 400"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	inst.ActiveRequests, err = meter.Int64UpDownCounter(
		"http.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	inst.RequestDuration, err = meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inst.ResponseSize, err = meter.Int64Histogram(
		"http.response.size",
		metric.WithDescription("HTTP response size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &inst, nil
}

// RegisterRuntime registers a callback reporting the heap allocation.
func RegisterRuntime(meter metric.Meter) (metric.Registration, error) {
	memoryGauge, err := meter.Int64ObservableGauge(
		"runtime.memory.heap.alloc",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		o.ObserveInt64(memoryGauge, int64(m.Alloc))
		return nil
	}, memoryGauge)
}
