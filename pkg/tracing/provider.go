// Package tracing wires an OpenTelemetry tracer provider exporting spans
// over OTLP/HTTP.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	errNoURL             = errors.New("URL is empty")
	errNoSvcName         = errors.New("service Name is empty")
	errUnsupportedScheme = errors.New("unsupported URL scheme")
)

// Shutdown flushes and stops a tracer provider.
type Shutdown func(ctx context.Context) error

// NewProvider returns a tracer provider exporting to the collector at u.
// An empty URL yields a no-op provider.
func NewProvider(ctx context.Context, svcName string, u url.URL, instanceID string, fraction float64) (trace.TracerProvider, Shutdown, error) {
	if u == (url.URL{}) {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}
	if u.Host == "" {
		return nil, nil, errNoURL
	}
	if svcName == "" {
		return nil, nil, errNoSvcName
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(u.Host),
	}
	if u.Path != "" {
		opts = append(opts, otlptracehttp.WithURLPath(u.Path))
	}
	switch u.Scheme {
	case "http":
		opts = append(opts, otlptracehttp.WithInsecure())
	case "https":
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnsupportedScheme, u.Scheme)
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	attributes := []attribute.KeyValue{
		attribute.String("service.name", svcName),
	}
	if instanceID != "" {
		attributes = append(attributes, attribute.String("service.instance.id", instanceID))
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.TraceIDRatioBased(fraction)),
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(resource.NewSchemaless(attributes...)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, tp.Shutdown, nil
}
