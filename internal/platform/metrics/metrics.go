// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics exposes Prometheus instruments for the authentication flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authentication methods.
const (
	MethodToken    = "token"
	MethodPassword = "password"
)

// Authentication results.
const (
	ResultSuccess      = "success"
	ResultUnauthorized = "unauthorized"
	ResultThrottled    = "throttled"
	ResultMalformed    = "malformed_credential_state"
	ResultStoreError   = "store_error"
)

// AuthenticationAttempts counts authentication attempts by method and result.
// Use Register to expose it on a registry.
var AuthenticationAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rankboard_authentication_attempts_total",
		Help: "Total number of authentication attempts",
	},
	[]string{"method", "result"},
)

// Register registers the package metrics with reg.
// Panics if registration fails (following prometheus convention).
func Register(reg prometheus.Registerer) {
	reg.MustRegister(AuthenticationAttempts)
}

// RecordAuthentication counts one attempt.
func RecordAuthentication(method, result string) {
	AuthenticationAttempts.WithLabelValues(method, result).Inc()
}

// NewRegistry returns a registry holding the runtime collectors and the
// package metrics.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Register(registry)
	return registry
}

// Handler serves registry in the Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
