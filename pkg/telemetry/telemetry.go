// Package telemetry installs the global OpenTelemetry tracer provider.
//
// Spans are created throughout alsroute with [go.opentelemetry.io/otel.Tracer].
// Without [Setup] they are no-ops; with an endpoint they are exported over
// OTLP/gRPC.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/macropower/alsroute/pkg/version"
)

// ServiceName is reported as the service.name resource attribute.
const ServiceName = "alsroute"

// ShutdownTimeout bounds flushing spans on shutdown.
const ShutdownTimeout = 5 * time.Second

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Opt configures [Setup].
type Opt func(*options)

type options struct {
	exporter sdktrace.SpanExporter
	endpoint string
	insecure bool
}

// WithEndpoint exports spans to an OTLP/gRPC collector at endpoint
// (host:port).
func WithEndpoint(endpoint string) Opt {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithInsecure disables transport security for the OTLP connection.
func WithInsecure(insecure bool) Opt {
	return func(o *options) {
		o.insecure = insecure
	}
}

// WithExporter exports spans to exp instead of an OTLP collector. Spans are
// exported synchronously as they end.
func WithExporter(exp sdktrace.SpanExporter) Opt {
	return func(o *options) {
		o.exporter = exp
	}
}

// NewRecorder returns an in-memory exporter for use with [WithExporter].
func NewRecorder() *tracetest.InMemoryExporter {
	return tracetest.NewInMemoryExporter()
}

// Setup installs a global tracer provider. When neither an endpoint nor an
// exporter is given, nothing is installed and the returned function is a
// no-op.
func Setup(ctx context.Context, opts ...Opt) (ShutdownFunc, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var spanOpt sdktrace.TracerProviderOption

	exp := o.exporter
	if exp != nil {
		spanOpt = sdktrace.WithSyncer(exp)
	} else {
		if o.endpoint == "" {
			return func(context.Context) error { return nil }, nil
		}

		clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(o.endpoint)}
		if o.insecure {
			clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
		}

		var err error

		exp, err = otlptracegrpc.New(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}

		spanOpt = sdktrace.WithBatcher(exp)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version.GetVersion()),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		spanOpt,
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
		defer cancel()

		err := tp.Shutdown(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutdown tracer provider: %w", err)
		}

		return nil
	}, nil
}
