package httputil

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "qrlogin_http_requests_total",
		Help: "Requests sent to the login provider, by endpoint and status code",
	},
	[]string{"endpoint", "code"},
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "qrlogin_http_request_duration_seconds",
		Help:    "Login provider request latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	},
	[]string{"endpoint"},
)
