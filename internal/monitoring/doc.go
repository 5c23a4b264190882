/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the document
processing service, tracking HTTP requests, function invocations, processing
stages, and trace export health.

# Features

- HTTP request metrics (latency, throughput, size)
- Invocation metrics (duration, status, in-flight count)
- Stage metrics (duration, slow-path hits)
- Trace flush metrics (attempts, failures)
- System metrics (uptime)

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record custom metrics
	metrics.RecordStage("render_pages", duration, slow)
	metrics.RecordFlush(err)

	// Time invocations
	timer := monitoring.NewTimer(metrics, "document.process")
	// ... perform invocation ...
	timer.Stop(monitoring.StatusSuccess)

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
