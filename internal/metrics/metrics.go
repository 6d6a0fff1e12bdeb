// Package metrics exposes Prometheus instrumentation for the HTTP layer
// and feed assembly.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microblog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "microblog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// FeedDuration measures feed assembly.
	// Labels:
	//   - feed: "followed" or "explore"
	FeedDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "microblog_feed_assembly_duration_seconds",
			Help:    "Time spent assembling a feed page",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"feed"},
	)

	MailsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "microblog_reset_mails_requested_total",
		Help: "Password reset mails queued or sent",
	})
)

// ObserveFeed records how long a feed page took to build.
func ObserveFeed(feed string, start time.Time) {
	FeedDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
}

// Middleware records request count and latency keyed by chi route pattern,
// so /user/{username} is one series regardless of username.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
