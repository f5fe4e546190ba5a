package httputil

import (
	"context"
	"net/http/httptrace"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectionGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "out_conns",
	Help: "A gauge of in-use TCP connections to the login provider",
}, []string{"service"})

// SetClientTrace returns a context that tracks connections used by requests made with it
// under the given service label.
func SetClientTrace(ctx context.Context, service string) context.Context {
	trace := &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) {
			connectionGauge.WithLabelValues(service).Inc()
		},
		PutIdleConn: func(error) {
			connectionGauge.WithLabelValues(service).Dec()
		},
	}
	return httptrace.WithClientTrace(ctx, trace)
}
