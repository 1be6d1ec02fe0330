// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus collectors for the HTTP layer and the
domain events worth alerting on.

Collectors are registered on the default registry through promauto and
served by [Handler] on GET /metrics.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "librio"

var (
	// HTTPRequestsTotal counts finished requests by route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// AuthzDecisionsTotal counts permission checks by object, action and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_decisions_total",
			Help:      "Total number of permission-group decisions",
		},
		[]string{"object", "action", "decision"},
	)

	// CatalogQueriesTotal counts catalogue listings by adult visibility.
	CatalogQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_queries_total",
			Help:      "Total number of catalogue queries",
		},
		[]string{"adult_visible"},
	)

	// AdultGateDeniedTotal counts detail or edit attempts rejected by the adult gate.
	AdultGateDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adult_gate_denied_total",
			Help:      "Total number of requests rejected by the adult content gate",
		},
	)

	// ReadingEventsTotal counts reading-record lifecycle events.
	ReadingEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reading_events_total",
			Help:      "Total number of reading record events",
		},
		[]string{"event"},
	)

	// ViewerCacheTotal counts viewer profile cache lookups by result.
	ViewerCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewer_cache_total",
			Help:      "Total number of viewer cache lookups",
		},
		[]string{"result"},
	)
)

// # Recorders

// RecordAuthzDecision records one permission-group decision.
func RecordAuthzDecision(object, action string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisionsTotal.WithLabelValues(object, action, decision).Inc()
}

// RecordCatalogQuery records one catalogue listing.
func RecordCatalogQuery(adultVisible bool) {
	CatalogQueriesTotal.WithLabelValues(strconv.FormatBool(adultVisible)).Inc()
}

// RecordReadingEvent records a reading-record event such as "created" or "conflict".
func RecordReadingEvent(event string) {
	ReadingEventsTotal.WithLabelValues(event).Inc()
}

// RecordViewerCache records a viewer cache "hit", "miss" or "error".
func RecordViewerCache(result string) {
	ViewerCacheTotal.WithLabelValues(result).Inc()
}

// # HTTP

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (writer *statusWriter) WriteHeader(code int) {
	writer.status = code
	writer.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by the chi route
// pattern, which keeps label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		startTime := time.Now()
		recorder := &statusWriter{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		HTTPRequestsTotal.WithLabelValues(request.Method, route, strconv.Itoa(recorder.status)).Inc()
		HTTPRequestDuration.WithLabelValues(request.Method, route).Observe(time.Since(startTime).Seconds())
	})
}
