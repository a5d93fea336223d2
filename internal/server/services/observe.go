package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/dmitrijs2005/gophauth/internal/server/services"

// instruments records one counter increment and one duration sample per
// service call, labelled by operation and outcome.
type instruments struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(meter metric.Meter, tracer trace.Tracer) (*instruments, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(instrumentationName)
	}
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}

	requests, err := meter.Int64Counter(
		"auth.requests",
		metric.WithDescription("Auth service calls by operation and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"auth.duration_ms",
		metric.WithDescription("Auth service call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{tracer: tracer, requests: requests, duration: duration}, nil
}

// start opens a span for op; the returned func closes it and records metrics.
func (in *instruments) start(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := in.tracer.Start(ctx, "auth."+op, trace.WithSpanKind(trace.SpanKindInternal))
	begin := time.Now()

	return ctx, func(err error) {
		outcome := Outcome(err)
		opt := metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("outcome", outcome),
		)
		in.requests.Add(ctx, 1, opt)
		in.duration.Record(ctx, float64(time.Since(begin).Microseconds())/1000, opt)

		span.SetAttributes(attribute.String("auth.outcome", outcome))
		if err != nil {
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// Outcome names the error kind of err for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrorInvalidInput):
		return "invalid_input"
	case errors.Is(err, common.ErrorConflict):
		return "conflict"
	case errors.Is(err, common.ErrorUnauthorized):
		return "unauthorized"
	case errors.Is(err, common.ErrorStoreFailure):
		return "store_failure"
	case errors.Is(err, common.ErrorCryptoFailure):
		return "crypto_failure"
	case errors.Is(err, common.ErrorNotFound):
		return "not_found"
	default:
		return "error"
	}
}
