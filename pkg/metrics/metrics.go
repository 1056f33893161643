package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CheckoutMetrics struct {
	Checkouts   *prometheus.CounterVec
	OTPAttempts prometheus.Counter
	LatencyMS   prometheus.Histogram
}

// NewCheckoutMetrics registers checkout counters on reg. Pass a fresh
// prometheus.NewRegistry in tests to avoid double registration.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retail",
		Subsystem: "checkout",
		Name:      "attempts_total",
		Help:      "Total number of checkout attempts by outcome.",
	}, []string{"outcome"})
	otpAttempts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "retail",
		Subsystem: "checkout",
		Name:      "otp_attempts_total",
		Help:      "Total number of one-time code verification attempts.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "retail",
		Subsystem: "checkout",
		Name:      "duration_ms",
		Help:      "Checkout duration in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	reg.MustRegister(checkouts, otpAttempts, latency)
	return &CheckoutMetrics{Checkouts: checkouts, OTPAttempts: otpAttempts, LatencyMS: latency}
}

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retail",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "retail",
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Handler exposes the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
