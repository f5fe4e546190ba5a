package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zf1976/pancli/pkg/httputil"
	"github.com/zf1976/pancli/pkg/logging"
	"github.com/zf1976/pancli/pkg/version"
)

const metricsShutdownTimeout = 5 * time.Second

func metricsHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(httputil.LoggingMiddleware(logging.Fields{"service": "metrics"}))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/_health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// serveMetrics exposes prometheus metrics on addr until the returned function is called.  An
// empty addr serves nothing.  Failing to listen only warns: login does not depend on metrics.
func serveMetrics(ctx context.Context, addr string) func() {
	if addr == "" {
		return func() {}
	}
	log := logging.FromContext(ctx).WithField("listen_address", addr)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.WithError(err).Debug("metrics listen failed")
		Warning(fmt.Sprintf("metrics are not served: %s", err))
		return func() {}
	}
	version.Register()
	srv := &http.Server{
		Addr:              addr,
		Handler:           metricsHandler(),
		ReadHeaderTimeout: time.Minute,
	}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	log.Debug("serving metrics")
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("metrics server shutdown")
		}
	}
}
