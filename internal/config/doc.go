// Package config provides 12-factor configuration management for the docproc service.
//
// Configuration is loaded from environment variables with sensible defaults.
// An optional .env file is read by the entrypoint before loading.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Telemetry: service identity, trace exporter, sampling, resource tags
//   - Function: invocation concurrency limits
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Environment Variables:
//   - PORT, HOST
//   - SERVICE_NAME, ENVIRONMENT, VERSION
//   - TELEMETRY_EXPORTER, TELEMETRY_ENDPOINT, TELEMETRY_INSECURE
//   - TELEMETRY_SAMPLE_RATE, TELEMETRY_TAGS
//   - FUNCTION_MAX_CONCURRENT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_ENABLED, RATE_LIMIT_RPS, RATE_LIMIT_BURST
package config
