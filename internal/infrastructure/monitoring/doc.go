/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the backend
service, tracking HTTP requests, envelope requests, websocket connections,
and session-state gauges (workspaces, tabs, views).

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record custom metrics
	metrics.RecordRequest("tab.create", true)
	metrics.SetLiveViews(3)

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
