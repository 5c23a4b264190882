// Package http provides HTTP handlers and routing for the processing API.
//
// This package implements the platform-facing endpoints using the Gin
// framework: the invocation entrypoint plus health and discovery routes.
//
// Endpoints:
//   - Process: POST /process
//   - Health: / and /health
//   - Metrics: /metrics (Prometheus, wired by the server)
//
// Features:
//   - JSON request/response handling
//   - Work errors surfaced unchanged with proper status codes
//   - Request validation
//
// Example Usage:
//
//	handlers := http.NewHandlers(harness, tctx, metrics, logger)
//	router.POST("/process", handlers.Process)
//	router.GET("/health", handlers.Health)
package http
