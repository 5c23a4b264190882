/*
Package function defines the serverless workload contract and its harness.

# Overview

A workload implements Handler: an init hook, a per-unit-of-work Handle, and
a finish hook. The Harness owns everything the platform cares about around
those hooks: root spans, log correlation, invocation metrics, and the trace
flush that must complete before the runtime freezes the container.

# Lifecycle

	harness := function.New(handler, tctx, metrics, logger)

	// Once per container, before traffic
	if err := harness.Start(ctx); err != nil { ... }

	// Once per unit of work, concurrently
	result, err := harness.Invoke(ctx, function.Request{WorkID: "doc-1"})

	// Once when the container is retired
	harness.Stop(ctx)

# Guarantees

Invoke opens exactly one root span named document.process, tags it with
work_id, strategy, and a fresh invocation_id, and closes it on every exit
path including handler panics and cancelled contexts. After the root span
closes, buffered spans are flushed exactly once. The handler's result and
error pass through unchanged; instrumentation never retries work and never
swallows a work error.
*/
package function
