package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_http_requests_total",
			Help: "HTTP requests by route template, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nearby_http_request_duration_seconds",
			Help:    "HTTP request latency by route template",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Prometheus records request counts and latency per mux route template,
// so path parameters do not explode label cardinality.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(wrapped.Status)).Inc()
		httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
