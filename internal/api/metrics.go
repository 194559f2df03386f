package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "novelai"

// Metrics records client request counts and latencies. A nil *Metrics
// records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates client metrics and registers them with reg when it is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of NovelAI API requests",
			},
			[]string{"op", "code"}, // code: HTTP status, or "error" without a response
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Duration of NovelAI API requests in seconds",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requestsTotal, m.requestDuration)
	}
	return m
}

func (m *Metrics) observe(op string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if statusCode != 0 {
		code = strconv.Itoa(statusCode)
	}
	m.requestsTotal.WithLabelValues(op, code).Inc()
	m.requestDuration.WithLabelValues(op).Observe(d.Seconds())
}
