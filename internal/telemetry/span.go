package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanTypeKey is the attribute carrying a span's category, used for
// grouping in trace UIs.
const SpanTypeKey = "span.type"

// Span categories.
const (
	TypeServerless = "serverless"
	TypeTemplate   = "template"
	TypeLLM        = "llm"
)

// Span wraps an OpenTelemetry span with the tag/metric split used by the
// export pipeline: string tags carry categorical facts, numeric metrics
// carry quantitative facts.
type Span struct {
	trace.Span
}

// StartOption configures a span at creation time.
type StartOption func(*startConfig)

type startConfig struct {
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

// WithSpanType sets the span's category tag.
func WithSpanType(spanType string) StartOption {
	return func(cfg *startConfig) {
		cfg.attrs = append(cfg.attrs, attribute.String(SpanTypeKey, spanType))
	}
}

// WithEntrypoint marks the span as an externally triggered entry point,
// distinguishing invocation roots from internal spans.
func WithEntrypoint() StartOption {
	return func(cfg *startConfig) {
		cfg.kind = trace.SpanKindServer
	}
}

// WithAttributes attaches additional attributes at creation time.
func WithAttributes(attrs ...attribute.KeyValue) StartOption {
	return func(cfg *startConfig) {
		cfg.attrs = append(cfg.attrs, attrs...)
	}
}

// Start opens a span named name, nested under the span active in ctx or
// as a new root when none is active. The caller must End the span on
// every exit path.
func (t *Context) Start(ctx context.Context, name string, opts ...StartOption) (context.Context, *Span) {
	cfg := startConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&cfg)
	}

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(cfg.kind)}
	if len(cfg.attrs) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(cfg.attrs...))
	}

	ctx, span := t.tracer.Start(ctx, name, startOpts...)
	return ctx, &Span{Span: span}
}

// SpanFromContext returns the span active in ctx. When no span is active
// the returned span is a no-op carrier, safe to tag.
func SpanFromContext(ctx context.Context) *Span {
	return &Span{Span: trace.SpanFromContext(ctx)}
}

// SetTag records a categorical fact on the span.
func (s *Span) SetTag(key, value string) {
	s.SetAttributes(attribute.String(key, value))
}

// SetBoolTag records a boolean fact on the span.
func (s *Span) SetBoolTag(key string, value bool) {
	s.SetAttributes(attribute.Bool(key, value))
}

// SetMetric records a quantitative fact on the span.
func (s *Span) SetMetric(key string, value float64) {
	s.SetAttributes(attribute.Float64(key, value))
}

// SetError records err on the span and marks it failed. A nil err is a
// no-op.
func (s *Span) SetError(err error) {
	if err == nil {
		return
	}
	s.RecordError(err)
	s.SetStatus(codes.Error, err.Error())
}
