package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kelmerpassos/ipet-api/pkg/tracing/exporters"
)

// Init configures the global tracer provider and the package tracer.
// Returns a shutdown function that flushes pending spans.
func Init(serviceName string) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(&exporters.ConsoleExporter{}),
	)
	otel.SetTracerProvider(tp)
	SetTracer(tp.Tracer(serviceName))
	return tp.Shutdown
}
