/*
Package monitoring provides Prometheus metrics for the prompt runtime.

# Overview

Metrics cover the HTTP surface, host connections and messages, and the
prompt session lifecycle: active sessions, settlement outcomes, stale
asynchronous results, generator latency, preview failures and validation
rejections.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time a generator
	timer := monitoring.NewTimer(metrics)
	// ... run generator ...
	timer.Stop("ok")

A nil *Metrics records nothing, which keeps tests and embedded uses free of
registry setup.

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
*/
package monitoring
