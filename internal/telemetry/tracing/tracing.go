package tracing

import (
	"fmt"

	redisotel "github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	honeycomb "github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("healthrec-engine")

// HoneycombSetup configures the OpenTelemetry SDK via the honeycomb
// distro and hooks the redis client into tracing. The returned shutdown
// func flushes pending spans; call it on the way down.
func HoneycombSetup(tracingEnabled bool, serviceName string, rdb *redis.Client) (func(), error) {
	if !tracingEnabled {
		logrus.Debugln("tracing disabled, skipping otel setup")
		return func() {}, nil
	}

	bsp := honeycomb.NewBaggageSpanProcessor()
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithSpanProcessor(bsp),
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, fmt.Errorf("configure opentelemetry: %w", err)
	}

	rdb.AddHook(redisotel.NewTracingHook())

	return otelShutdown, nil
}

// EndSpanWithErrCheck marks the span failed when err is set, then ends it.
// Meant to be used deferred, with the named error return of the caller.
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	span.End()
}

// LogTraceID logs the trace ID of the given span, for cross-referencing
// service logs with the tracing backend.
func LogTraceID(span trace.Span, operation string) {
	if !span.SpanContext().HasTraceID() {
		return
	}
	logrus.Tracef("%s: trace id: %s", operation, span.SpanContext().TraceID())
}
