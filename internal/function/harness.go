package function

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hvlabs/docproc/internal/logging"
	"github.com/hvlabs/docproc/internal/monitoring"
	"github.com/hvlabs/docproc/internal/shared/id"
	"github.com/hvlabs/docproc/internal/telemetry"
)

// Operation names for lifecycle spans
const (
	OpProcess  = "document.process"
	OpInit     = "function.init"
	OpShutdown = "function.shutdown"
)

// Tag keys set on every root span
const (
	TagWorkID       = "work_id"
	TagStrategy     = "strategy"
	TagInvocationID = "invocation_id"
)

// Harness wraps a Handler with the per-invocation telemetry contract:
// a root span per unit of work, correlated logs, invocation metrics, and
// a trace flush on every exit path before control returns to the platform.
type Harness struct {
	handler   Handler
	telemetry *telemetry.Context
	metrics   *monitoring.Metrics
	log       *logging.Logger

	startOnce sync.Once
	startErr  error
	stopOnce  sync.Once
	stopErr   error
}

// New creates a harness around a handler
func New(handler Handler, tctx *telemetry.Context, metrics *monitoring.Metrics, log *logging.Logger) *Harness {
	return &Harness{
		handler:   handler,
		telemetry: tctx,
		metrics:   metrics,
		log:       log.Named("function"),
	}
}

// Start runs the handler's init hook inside a function.init span.
// Safe to call more than once; only the first call runs the hook.
func (h *Harness) Start(ctx context.Context) error {
	h.startOnce.Do(func() {
		h.startErr = h.start(ctx)
	})
	return h.startErr
}

func (h *Harness) start(ctx context.Context) error {
	ctx, span := h.telemetry.Start(ctx, OpInit,
		telemetry.WithSpanType(telemetry.TypeServerless),
	)
	defer span.End()

	h.log.For(ctx).Info("function_starting")

	if err := h.handler.OnStart(ctx); err != nil {
		span.SetError(err)
		h.log.For(ctx).Error("init_hook_failed", zap.Error(err))
		return err
	}

	h.log.For(ctx).Info("function_started")
	return nil
}

// Invoke runs one unit of work under a root span.
//
// The handler's result and error are returned unchanged. Teardown is
// guaranteed on every exit path, normal return, handler error, panic, or
// cancellation: the root span is closed first, then buffered spans are
// flushed exactly once. Instrumentation failures are logged and counted,
// never returned. Safe for concurrent use.
func (h *Harness) Invoke(ctx context.Context, req Request) (result *Result, err error) {
	invocationID := id.NewInvocationID()
	start := time.Now()
	timer := monitoring.NewTimer(h.metrics, OpProcess)
	h.metrics.IncInFlight()

	ctx, root := h.telemetry.Start(ctx, OpProcess,
		telemetry.WithSpanType(telemetry.TypeServerless),
		telemetry.WithEntrypoint(),
	)
	root.SetTag(TagWorkID, req.WorkID)
	root.SetTag(TagStrategy, req.Strategy)
	root.SetTag(TagInvocationID, invocationID.String())

	h.log.For(ctx).Info("invocation_started",
		zap.String("work_id", req.WorkID),
		zap.String("strategy", req.Strategy),
		zap.String("invocation_id", invocationID.String()),
	)

	defer func() {
		if r := recover(); r != nil {
			root.SetError(fmt.Errorf("handler panic: %v", r))
			h.log.For(ctx).Error("invocation_panicked",
				zap.String("work_id", req.WorkID),
				zap.Any("panic", r),
			)
			h.finish(ctx, root, timer, monitoring.StatusError)
			panic(r)
		}

		status := monitoring.StatusSuccess
		if err != nil {
			status = monitoring.StatusError
			root.SetError(err)
			h.log.For(ctx).Error("invocation_failed",
				zap.String("work_id", req.WorkID),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		} else {
			h.log.For(ctx).Info("invocation_completed",
				zap.String("work_id", req.WorkID),
				zap.Duration("duration", time.Since(start)),
			)
		}
		h.finish(ctx, root, timer, status)
	}()

	result, err = h.handler.Handle(ctx, req)
	return result, err
}

// finish closes the root span, records metrics, and flushes exactly once.
// The span must end before the flush so it is part of the export.
func (h *Harness) finish(ctx context.Context, root *telemetry.Span, timer *monitoring.Timer, status string) {
	root.End()
	timer.Stop(status)
	h.metrics.DecInFlight()
	h.metrics.RecordFlush(h.telemetry.Flush(ctx))
}

// Stop runs the handler's finish hook inside a function.shutdown span and
// tears down the tracer. Best-effort: telemetry errors are logged, only the
// hook's own error is returned. Only the first call runs the hook.
func (h *Harness) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() {
		h.stopErr = h.stop(ctx)
	})
	return h.stopErr
}

func (h *Harness) stop(ctx context.Context) error {
	ctx, span := h.telemetry.Start(ctx, OpShutdown,
		telemetry.WithSpanType(telemetry.TypeServerless),
	)

	h.log.For(ctx).Info("function_stopping")

	err := h.handler.OnStop(ctx)
	if err != nil {
		span.SetError(err)
		h.log.For(ctx).Warn("finish_hook_failed", zap.Error(err))
	}
	span.End()

	// Provider shutdown performs the final flush for the span above
	if shutdownErr := h.telemetry.Shutdown(ctx); shutdownErr != nil {
		h.log.Warn("tracer_shutdown_failed", zap.Error(shutdownErr))
	} else {
		h.log.Info("tracer_shutdown_complete")
	}
	return err
}
