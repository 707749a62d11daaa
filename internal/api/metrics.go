package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts client activity.
type Metrics struct {
	Requests *prometheus.CounterVec
	Refresh  *prometheus.CounterVec
	Retries  prometheus.Counter
}

// NewMetrics creates the client counters and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoctl_http_requests_total",
				Help: "HTTP requests sent to the backend, by method and status code",
			},
			[]string{"method", "code"},
		),
		Refresh: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoctl_token_refresh_total",
				Help: "Access token refresh attempts, by outcome",
			},
			[]string{"outcome"},
		),
		Retries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "todoctl_request_retries_total",
				Help: "Requests resent after a successful token refresh",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Refresh, m.Retries)
	}
	return m
}
