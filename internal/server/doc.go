// Package server provides HTTP server setup and initialization for the
// document processing service.
//
// This package orchestrates all components:
//   - HTTP routing with Gin framework
//   - Middleware stack (request IDs, CORS, rate limiting, admission control)
//   - Telemetry context (tracer provider, runtime detection)
//   - Document processor and its invocation harness
//   - Prometheus metrics endpoint
//
// Server Lifecycle:
//  1. Load configuration from environment
//  2. Initialize logger (production or development)
//  3. Build telemetry context and detect the runtime
//  4. Construct the processor and run its init hook
//  5. Setup HTTP routes and middleware
//  6. Start HTTP server
//  7. Graceful shutdown on signal: finish hook, final trace flush
//
// Features:
//   - Configuration-driven setup
//   - Graceful shutdown handling
//   - Per-invocation trace flush on the work route
//   - Health check endpoints
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(ctx, cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
