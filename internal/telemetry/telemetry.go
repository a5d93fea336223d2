// Package telemetry sets up the OpenTelemetry meter and tracer providers
// used by the services and the gRPC stats handler.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/dmitrijs2005/gophauth"

type Config struct {
	ServiceName string
	Version     string

	// Metrics enables the Prometheus exporter.
	Metrics bool

	// Traces selects the span exporter: "none" or "stdout".
	Traces    string
	SamplePct float64
}

func (c Config) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service name is required")
	}
	switch c.Traces {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("unknown trace exporter: %q", c.Traces)
	}
	if c.SamplePct < 0 || c.SamplePct > 1 {
		return fmt.Errorf("sample percentage must be between 0.0 and 1.0, got: %f", c.SamplePct)
	}
	return nil
}

type Telemetry struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider

	sdkMeter  *sdkmetric.MeterProvider
	sdkTracer *sdktrace.TracerProvider
	registry  *promclient.Registry
}

// New builds the providers. Span output goes to w when Traces is "stdout".
func New(ctx context.Context, cfg Config, w io.Writer) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Telemetry{
		meterProvider:  metricnoop.NewMeterProvider(),
		tracerProvider: tracenoop.NewTracerProvider(),
	}

	if cfg.Metrics {
		t.registry = promclient.NewRegistry()
		exp, err := prometheus.New(prometheus.WithRegisterer(t.registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		t.sdkMeter = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp), sdkmetric.WithResource(res))
		t.meterProvider = t.sdkMeter
	}

	if cfg.Traces == "stdout" {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		t.sdkTracer = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplePct))),
		)
		t.tracerProvider = t.sdkTracer
	}

	return t, nil
}

func (t *Telemetry) Meter() metric.Meter {
	return t.meterProvider.Meter(instrumentationName)
}

func (t *Telemetry) Tracer() trace.Tracer {
	return t.tracerProvider.Tracer(instrumentationName)
}

func (t *Telemetry) MeterProvider() metric.MeterProvider { return t.meterProvider }

func (t *Telemetry) TracerProvider() trace.TracerProvider { return t.tracerProvider }

// Handler serves the Prometheus scrape endpoint, or 404 when metrics are off.
func (t *Telemetry) Handler() http.Handler {
	if t.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the SDK providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.sdkTracer != nil {
		if err := t.sdkTracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if t.sdkMeter != nil {
		if err := t.sdkMeter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
