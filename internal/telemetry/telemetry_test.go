package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/hvlabs/docproc/internal/logging"
	"github.com/hvlabs/docproc/internal/telemetry/telemetrytest"
)

func testConfig() Config {
	return Config{
		ServiceName: "docproc-test",
		Environment: "test",
		Version:     "0.0.1",
		Exporter:    "none",
		SampleRate:  1.0,
		Tags:        map[string]string{"team": "docs"},
	}
}

func testRuntime() RuntimeContext {
	return RuntimeContext{
		IsRemote:    true,
		Environment: "test",
		Version:     "0.0.1",
		Region:      "us-east",
		TaskID:      "ta-123",
		ImageID:     "im-456",
		BootID:      "boot-789",
	}
}

func newTestContext(t *testing.T) (*Context, *telemetrytest.Recorder) {
	t.Helper()

	recorder := telemetrytest.NewRecorder()
	tctx, err := New(context.Background(), testConfig(), testRuntime(), logging.NewNop(),
		WithSpanProcessor(recorder))
	require.NoError(t, err)
	return tctx, recorder
}

func TestNew(t *testing.T) {
	t.Run("unknown exporter fails", func(t *testing.T) {
		cfg := testConfig()
		cfg.Exporter = "jaeger"

		_, err := New(context.Background(), cfg, testRuntime(), logging.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported exporter")
	})

	t.Run("stdout exporter builds", func(t *testing.T) {
		cfg := testConfig()
		cfg.Exporter = "stdout"

		tctx, err := New(context.Background(), cfg, testRuntime(), logging.NewNop())
		require.NoError(t, err)
		require.NoError(t, tctx.Shutdown(context.Background()))
	})

	t.Run("disabled exporter builds", func(t *testing.T) {
		tctx, err := New(context.Background(), testConfig(), testRuntime(), logging.NewNop())
		require.NoError(t, err)
		require.NoError(t, tctx.Shutdown(context.Background()))
	})
}

func TestStartParenting(t *testing.T) {
	tctx, recorder := newTestContext(t)

	ctx, root := tctx.Start(context.Background(), "document.process", WithEntrypoint())
	_, child := tctx.Start(ctx, "document.render_pages")
	child.End()
	root.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	// Children close before parents
	assert.Equal(t, "document.render_pages", ended[0].Name())
	assert.Equal(t, "document.process", ended[1].Name())

	// One shared trace, child parented to root
	assert.Equal(t, ended[1].SpanContext().TraceID(), ended[0].SpanContext().TraceID())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
	assert.False(t, ended[1].Parent().IsValid())

	// Entry point marking on the root only
	assert.Equal(t, trace.SpanKindServer, ended[1].SpanKind())
	assert.Equal(t, trace.SpanKindInternal, ended[0].SpanKind())
}

func TestStartSpanType(t *testing.T) {
	tctx, recorder := newTestContext(t)

	_, span := tctx.Start(context.Background(), "document.llm_extract", WithSpanType(TypeLLM))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.String(SpanTypeKey, TypeLLM))
}

func TestSpanTagsAndMetrics(t *testing.T) {
	tctx, recorder := newTestContext(t)

	_, span := tctx.Start(context.Background(), "document.process")
	span.SetTag("strategy", "mineru-vl")
	span.SetBoolTag("slow_render", true)
	span.SetMetric("total_pages", 10)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	attrs := ended[0].Attributes()
	assert.Contains(t, attrs, attribute.String("strategy", "mineru-vl"))
	assert.Contains(t, attrs, attribute.Bool("slow_render", true))
	assert.Contains(t, attrs, attribute.Float64("total_pages", 10))
}

func TestSpanSetError(t *testing.T) {
	tctx, recorder := newTestContext(t)

	boom := errors.New("render exploded")

	_, span := tctx.Start(context.Background(), "document.render_pages")
	span.SetError(boom)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "render exploded", ended[0].Status().Description)
	require.NotEmpty(t, ended[0].Events())
	assert.Equal(t, semconv.ExceptionEventName, ended[0].Events()[0].Name)
}

func TestSpanSetErrorNil(t *testing.T) {
	tctx, recorder := newTestContext(t)

	_, span := tctx.Start(context.Background(), "document.process")
	span.SetError(nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.NotEqual(t, codes.Error, ended[0].Status().Code)
	assert.Empty(t, ended[0].Events())
}

func TestSpanFromContext(t *testing.T) {
	tctx, recorder := newTestContext(t)

	ctx, root := tctx.Start(context.Background(), "document.process")

	// Tagging through the context reaches the active span
	SpanFromContext(ctx).SetMetric("total_pages", 10)
	root.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.Float64("total_pages", 10))

	// No active span yields a safe no-op carrier
	assert.NotPanics(t, func() {
		SpanFromContext(context.Background()).SetTag("ignored", "value")
	})
}

func TestResourceIdentity(t *testing.T) {
	tctx, recorder := newTestContext(t)

	_, span := tctx.Start(context.Background(), "document.process")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	attrs := ended[0].Resource().Attributes()
	assert.Contains(t, attrs, semconv.ServiceName("docproc-test"))
	assert.Contains(t, attrs, semconv.ServiceVersion("0.0.1"))
	assert.Contains(t, attrs, semconv.DeploymentEnvironment("test"))
	assert.Contains(t, attrs, attribute.String("runtime.region", "us-east"))
	assert.Contains(t, attrs, attribute.String("runtime.task_id", "ta-123"))
	assert.Contains(t, attrs, attribute.String("team", "docs"))
}

func TestSampling(t *testing.T) {
	t.Run("rate one records every span", func(t *testing.T) {
		tctx, recorder := newTestContext(t)

		for i := 0; i < 10; i++ {
			_, span := tctx.Start(context.Background(), "document.process")
			span.End()
		}
		assert.Len(t, recorder.Ended(), 10)
	})

	t.Run("rate zero records no spans", func(t *testing.T) {
		recorder := telemetrytest.NewRecorder()
		cfg := testConfig()
		cfg.SampleRate = 0

		tctx, err := New(context.Background(), cfg, testRuntime(), logging.NewNop(),
			WithSpanProcessor(recorder))
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			_, span := tctx.Start(context.Background(), "document.process")
			span.End()
		}
		assert.Empty(t, recorder.Ended())
	})
}

func TestFlush(t *testing.T) {
	t.Run("forces export", func(t *testing.T) {
		tctx, recorder := newTestContext(t)

		require.NoError(t, tctx.Flush(context.Background()))
		assert.Equal(t, 1, recorder.Flushes())
	})

	t.Run("runs despite cancelled invocation context", func(t *testing.T) {
		tctx, recorder := newTestContext(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, tctx.Flush(ctx))
		assert.Equal(t, 1, recorder.Flushes())
	})

	t.Run("export failure is returned, not raised", func(t *testing.T) {
		tctx, recorder := newTestContext(t)
		recorder.FailFlushes()

		err := tctx.Flush(context.Background())
		assert.ErrorIs(t, err, telemetrytest.ErrFlush)
		assert.Equal(t, 1, recorder.Flushes())
	})
}

func TestShutdown(t *testing.T) {
	tctx, recorder := newTestContext(t)

	require.NoError(t, tctx.Shutdown(context.Background()))
	assert.Equal(t, 1, recorder.Shutdowns())
}

func TestAccessors(t *testing.T) {
	tctx, _ := newTestContext(t)

	assert.Equal(t, "docproc-test", tctx.ServiceName())
	assert.Equal(t, "ta-123", tctx.Runtime().TaskID)
}
