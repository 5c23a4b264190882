package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hvlabs/docproc/internal/logging"
)

const (
	flushTimeout    = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Config defines telemetry configuration.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	Exporter    string // "otlp", "stdout" or "none"
	Endpoint    string
	Insecure    bool
	SampleRate  float64
	Tags        map[string]string
}

// Context is the explicitly constructed observability context shared by
// all invocations. It owns the tracer provider and the named tracer;
// invocations receive it rather than reaching for process globals.
type Context struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	log      *logging.Logger
	runtime  RuntimeContext
	service  string
}

// Option configures optional Context behavior.
type Option func(*options)

type options struct {
	processor sdktrace.SpanProcessor
	global    bool
}

// WithSpanProcessor registers a span processor in place of the configured
// exporter. Used by tests to observe span and flush activity directly.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) {
		o.processor = sp
	}
}

// WithGlobal installs the provider as the process-wide OpenTelemetry
// default, so instrumentation outside this module resolves to it.
func WithGlobal() Option {
	return func(o *options) {
		o.global = true
	}
}

// New builds the telemetry context: exporter, resource, sampler and
// tracer provider. Spans are buffered by a batch processor; callers own
// the per-invocation Flush that makes buffering safe on a platform that
// may freeze the process at any time.
func New(ctx context.Context, cfg Config, rc RuntimeContext, log *logging.Logger, opts ...Option) (*Context, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res, err := newResource(ctx, cfg, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SampleRate)),
	}

	if o.processor != nil {
		providerOpts = append(providerOpts, sdktrace.WithSpanProcessor(o.processor))
	} else {
		exporter, err := newExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build telemetry exporter: %w", err)
		}
		if exporter != nil {
			providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
		}
	}

	provider := sdktrace.NewTracerProvider(providerOpts...)
	if o.global {
		otel.SetTracerProvider(provider)
	}

	return &Context{
		provider: provider,
		tracer:   provider.Tracer(cfg.ServiceName),
		log:      log.Named("telemetry"),
		runtime:  rc,
		service:  cfg.ServiceName,
	}, nil
}

// newExporter selects the span exporter from configuration. A nil
// exporter with nil error means export is disabled.
func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp", "":
		clientOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Endpoint),
		}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(clientOpts...))
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported exporter: %q (supported: otlp, stdout, none)", cfg.Exporter)
	}
}

func newSampler(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.AlwaysSample()
	}
	if rate <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

func newResource(ctx context.Context, cfg Config, rc RuntimeContext) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
	attrs = append(attrs, rc.Attributes()...)
	for k, v := range cfg.Tags {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.New(ctx, resource.WithAttributes(attrs...))
}

// Runtime returns the runtime facts bound at startup.
func (t *Context) Runtime() RuntimeContext {
	return t.runtime
}

// ServiceName returns the logical service identity.
func (t *Context) ServiceName() string {
	return t.service
}

// Flush forces an export of all buffered span data. It runs even when the
// invocation's context is already cancelled, and failures are logged and
// returned, never raised into the wrapped work.
func (t *Context) Flush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	if err := t.provider.ForceFlush(ctx); err != nil {
		t.log.Warn("telemetry flush failed", zap.Error(err))
		return err
	}
	return nil
}

// Shutdown flushes remaining buffered data and releases exporter
// resources. Best-effort: the platform may kill the process without ever
// calling it, so no correctness may depend on it having run.
func (t *Context) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := t.provider.Shutdown(ctx); err != nil {
		t.log.Warn("tracer shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
