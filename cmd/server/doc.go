// Package main is the entry point for the document processing service.
//
// The service simulates a serverless document pipeline behind an HTTP
// interface: each POST /process invocation renders pages and extracts
// content under a fully instrumented trace, then flushes spans before
// responding, as a function runtime that may freeze the container would
// require.
//
// The server provides:
//   - REST API for document processing
//   - Per-invocation tracing with guaranteed flush
//   - Trace-correlated structured logs
//   - Prometheus metrics
//   - Rate limiting and admission control
//
// Configuration:
//   - Environment variables (12-factor)
//   - Optional .env file for development
//   - Defaults for local runs
//
// Usage:
//
//	# Production mode
//	TELEMETRY_ENDPOINT=collector:4318 ./server
//
//	# Development mode (colored logs, stdout spans)
//	LOG_DEV=true TELEMETRY_EXPORTER=stdout ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown with final trace flush
package main
