package qrlogin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	pollResultError   = "error"
	pollResultTimeout = "timeout"

	outcomeSuccess = "success"
)

var pollAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "qrlogin_poll_attempts_total",
		Help: "Scan status queries, by observed status or failure",
	},
	[]string{"result"},
)

var loginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "qrlogin_logins_total",
		Help: "Completed QR logins, by outcome (success or the failing stage)",
	},
	[]string{"outcome"},
)
