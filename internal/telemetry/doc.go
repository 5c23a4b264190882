/*
Package telemetry provides distributed tracing for serverless document processing.

# Overview

This package wraps the OpenTelemetry SDK behind a small facade tailored to
short-lived workloads. A Context owns the tracer provider for one container
and hands out spans; nothing is process-global unless explicitly installed,
so tests and concurrent functions can each carry their own instance.

# Features

- Explicit Context initialization with service identity and runtime placement
- Root and child span creation with parent-child relationships from context
- String tags and numeric metrics on any span
- Error recording with span status propagation
- Pluggable exporters: OTLP over HTTP, stdout for development, none to disable
- Parent-based probabilistic sampling
- Bounded flush and shutdown that survive cancelled request contexts

# Usage

	// Detect placement and create the tracing context once per container
	rc := telemetry.DetectRuntime(cfg.Environment, cfg.Version)
	tctx, err := telemetry.New(ctx, tcfg, rc, logger)

	// Root span for an invocation
	ctx, span := tctx.Start(ctx, "document.process",
		telemetry.WithSpanType(telemetry.TypeServerless),
		telemetry.WithEntrypoint(),
	)
	defer span.End()

	span.SetTag("work_id", workID)
	span.SetMetric("total_pages", 10)

	// Child span inherits the parent from ctx
	ctx, child := tctx.Start(ctx, "document.render_pages")
	defer child.End()

	// Export everything before the runtime freezes
	defer tctx.Flush(ctx)

# Flush Semantics

Spans are batched for efficiency, so nothing leaves the process until a
flush. Flush detaches from the caller's cancellation and applies its own
timeout; a cancelled invocation still exports its spans. Shutdown performs
a final flush and releases exporter resources.
*/
package telemetry
