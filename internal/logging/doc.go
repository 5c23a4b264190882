// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Every record carries the fields an operator needs to pivot from a log
// line to the trace that produced it:
//   - level, logger name, ISO-8601 timestamp, caller
//   - runtime fields bound once at startup (WithRuntime)
//   - trace_id and span_id of the active span (For)
//   - structured error rendering via zap.Error
//
// Example Usage:
//
//	logger := logging.NewDefault().Named("document")
//	logger = logger.WithRuntime(rc)
//
//	log := logger.For(ctx) // binds trace_id/span_id when a span is active
//	log.Info("processing_document", zap.String("work_id", id))
//	log.Error("render_failed", zap.Error(err))
//
// Calls that bypass the structured logger can be captured with
// InstallGlobals, which patches zap's globals and the standard library
// logger to write through this package.
package logging
