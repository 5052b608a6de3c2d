package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banking_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "banking_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// TransactionsTotal counts transaction pipeline outcomes by type.
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banking_transactions_total",
			Help: "Total number of processed transactions",
		},
		[]string{"transaction_type", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(TransactionsTotal)
}

// RecordTransaction counts one pipeline outcome. status is "completed" or
// "failed".
func RecordTransaction(transactionType, status string) {
	TransactionsTotal.WithLabelValues(transactionType, status).Inc()
}

// Middleware records request counts and latencies per route template.
func Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			srw := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(srw, r)

			endpoint := endpointLabel(r)
			httpRequestsTotal.WithLabelValues(
				r.Method,
				endpoint,
				strconv.Itoa(srw.statusCode),
			).Inc()
			httpRequestDuration.WithLabelValues(
				r.Method,
				endpoint,
			).Observe(time.Since(start).Seconds())
		})
	}
}

// statusResponseWriter captures the status code written by the handler.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// endpointLabel returns the route template so path parameters do not explode
// label cardinality.
func endpointLabel(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return r.URL.Path
	}

	pathTemplate, err := route.GetPathTemplate()
	if err != nil {
		return r.URL.Path
	}

	return pathTemplate
}
