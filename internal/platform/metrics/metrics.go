// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics declares the Prometheus collectors exported by the API.

Collectors are registered once on the default registry at package load and
exposed through [Handler]. Domain packages record events through the small
helper functions below so that label values stay consistent.
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

	"github.com/taibuivan/yamdb/internal/platform/constants"
)

// # Label Values

const (
	IssueCreate  = "create"
	IssueReissue = "reissue"

	VerifySuccess = "success"
	VerifyInvalid = "invalid"
)

// # Collectors

var (
	codesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "confirmation_codes_issued_total",
			Help:      "Confirmation codes stored, by signup path",
		},
		[]string{"kind"},
	)

	codeVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "code_verifications_total",
			Help:      "Confirmation code verification attempts, by result",
		},
		[]string{"result"},
	)

	notificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "notifications_failed_total",
			Help:      "Confirmation code deliveries that returned an error",
		},
	)

	authorizationDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "authorization_denials_total",
			Help:      "Requests denied by the authorization table, by tier",
		},
		[]string{"tier"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)
)

// # Recorders

// CodeIssued counts a stored confirmation code. kind is [IssueCreate] or [IssueReissue].
func CodeIssued(kind string) {
	codesIssued.WithLabelValues(kind).Inc()
}

// CodeVerified counts a verification attempt. result is [VerifySuccess] or [VerifyInvalid].
func CodeVerified(result string) {
	codeVerifications.WithLabelValues(result).Inc()
}

// NotificationFailed counts a failed confirmation delivery.
func NotificationFailed() {
	notificationFailures.Inc()
}

// AuthorizationDenied counts a denial by the named tier.
func AuthorizationDenied(tier string) {
	authorizationDenials.WithLabelValues(tier).Inc()
}

// # HTTP

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (writer *statusWriter) WriteHeader(code int) {
	writer.status = code
	writer.ResponseWriter.WriteHeader(code)
}

// methodLabel folds non-standard request methods into "other".
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	default:
		return "other"
	}
}

// Middleware records request count and latency keyed by the chi route pattern.
//
// Route patterns and known methods are used instead of raw values to keep
// label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		startTime := time.Now()
		wrapped := &statusWriter{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(wrapped, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		method := methodLabel(request.Method)
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(startTime).Seconds())
	})
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
