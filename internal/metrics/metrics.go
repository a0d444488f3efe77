package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		},
	)

	ordersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders placed from a cart.",
		},
	)
	paymentsConfirmedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_confirmed_total",
			Help: "Total number of orders marked paid, by payment method.",
		},
		[]string{"method"},
	)
	paymentVerificationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_verification_failures_total",
			Help: "Total number of provider captures that failed verification.",
		},
	)
	cartConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_conflicts_total",
			Help: "Total number of cart writes that lost a concurrent update and were retried.",
		},
	)
)

func OrderCreated() {
	ordersCreatedTotal.Inc()
}

func PaymentConfirmed(method string) {
	paymentsConfirmedTotal.WithLabelValues(method).Inc()
}

func PaymentVerificationFailed() {
	paymentVerificationFailuresTotal.Inc()
}

func CartConflict() {
	cartConflictsTotal.Inc()
}

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type patternKey struct{}

// Middleware records request count, latency and in-flight gauge. The path label is the
// matched route pattern, reported back by RecordPattern, so ids never become label values.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := newResponseWriter(w)

		pattern := new(string)
		ctx := context.WithValue(r.Context(), patternKey{}, pattern)

		defer func() {

			pathPattern := *pattern
			if pathPattern == "" {
				pathPattern = "unmatched"
			}

			duration := time.Since(start)
			statusCodeStr := strconv.Itoa(rw.statusCode)

			httpRequestsTotal.WithLabelValues(statusCodeStr, r.Method, pathPattern).Inc()
			httpRequestsDuration.WithLabelValues(r.Method, pathPattern).Observe(duration.Seconds())
			httpRequestsInFlight.Dec()

		}()

		next.ServeHTTP(rw, r.WithContext(ctx))

	})
}

// RecordPattern wraps the mux; once it has routed the request, r.Pattern holds the route.
func RecordPattern(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		mux.ServeHTTP(w, r)

		if pattern, ok := r.Context().Value(patternKey{}).(*string); ok {
			*pattern = r.Pattern
		}
	})
}

// http.Handler for the Prometheus /metrics endpoint
func Handler() http.Handler {

	return promhttp.Handler()
}
