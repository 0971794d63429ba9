package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/dbbm/internal/core/ports"
)

// Setup installs a global tracer provider whose spans are reported to renderer.
// The returned function shuts the provider down and restores the previous one.
func Setup(renderer ports.Renderer) func(context.Context) error {
	previous := otel.GetTracerProvider()

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(renderer)),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		defer otel.SetTracerProvider(previous)
		return tp.Shutdown(ctx)
	}
}
