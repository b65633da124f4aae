// Package telemetry adapts OpenTelemetry spans to the Tracer port and forwards them to a Renderer.
package telemetry

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/monorun/internal/core/ports"
)

// InstrumentationName names the tracer created by this package.
const InstrumentationName = "go.trai.ch/monorun"

var _ ports.Tracer = (*OTelTracer)(nil)

// OTelTracer is a concrete implementation of ports.Tracer using OpenTelemetry.
type OTelTracer struct {
	tracer   trace.Tracer
	renderer ports.Renderer
}

// TracerOption configures an OTelTracer.
type TracerOption func(*tracerConfig)

type tracerConfig struct {
	provider trace.TracerProvider
	renderer ports.Renderer
}

// WithProvider uses provider instead of the global OpenTelemetry tracer provider.
func WithProvider(provider trace.TracerProvider) TracerOption {
	return func(c *tracerConfig) {
		c.provider = provider
	}
}

// WithRenderer streams span output and the build plan to renderer.
func WithRenderer(renderer ports.Renderer) TracerOption {
	return func(c *tracerConfig) {
		c.renderer = renderer
	}
}

// NewOTelTracer creates a new OTelTracer.
func NewOTelTracer(opts ...TracerOption) *OTelTracer {
	cfg := tracerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetTracerProvider()
	}

	return &OTelTracer{
		tracer:   cfg.provider.Tracer(InstrumentationName),
		renderer: cfg.renderer,
	}
}

// Start creates a new span. Attributes given as options are set before span processors see the start.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
	for _, k := range slices.Sorted(maps.Keys(cfg.Attributes)) {
		attrs = append(attrs, toAttribute(k, cfg.Attributes[k]))
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &OTelSpan{
		span:     span,
		renderer: t.renderer,
		id:       span.SpanContext().SpanID().String(),
	}
}

// EmitPlan records the planned packages on the current span and hands them to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, packages []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("packages", packages),
		))
	}

	if t.renderer != nil {
		t.renderer.OnPlanEmit(packages)
	}
}

var _ ports.Span = (*OTelSpan)(nil)

// OTelSpan is a concrete implementation of ports.Span using OpenTelemetry.
type OTelSpan struct {
	span     trace.Span
	renderer ports.Renderer
	id       string
}

// End completes the span.
func (s *OTelSpan) End() {
	s.span.End()
}

// RecordError records an error for the span.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

// Write satisfies io.Writer by forwarding output to the renderer, or recording it as a span event.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.renderer != nil {
		s.renderer.OnTaskLog(s.id, slices.Clone(p))
		return len(p), nil
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
