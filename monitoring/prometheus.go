package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	UpstreamDuration *prometheus.HistogramVec
	UpstreamErrors   *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	RateLimitWaits   *prometheus.CounterVec
	HandlerDuration  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_duration_seconds",
			Help:    "Duration of outbound requests to upstream APIs",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"upstream"}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_errors_total",
			Help: "Number of failed outbound requests",
		}, []string{"upstream"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Number of outbound requests",
		}, []string{"upstream"}),
		RateLimitWaits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_waits_total",
			Help: "Number of outbound requests delayed by the rate limiter",
		}, []string{"upstream"}),
		HandlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of inbound HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Register adds the collectors to r, or to the default registry when r is nil.
func (m *Metrics) Register(r prometheus.Registerer) {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	r.MustRegister(
		m.UpstreamDuration,
		m.UpstreamErrors,
		m.UpstreamRequests,
		m.RateLimitWaits,
		m.HandlerDuration,
	)
}
