package telemetry

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/monorun/internal/core/ports"
)

// NewProvider returns a tracer provider that reports every sampled span to renderer through a Bridge.
// Callers own the provider and must Shutdown it to flush the renderer.
func NewProvider(renderer ports.Renderer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(NewBridge(renderer)),
	)
}
