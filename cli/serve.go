package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	handler "github.com/felipemarinho97/torrent-finder/api"
	"github.com/felipemarinho97/torrent-finder/consts"
	"github.com/felipemarinho97/torrent-finder/logging"
	"github.com/felipemarinho97/torrent-finder/monitoring"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web page, the JSON API and the metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics()
	metrics.Register(reg)

	cfg, svc, err := setup(ctx, os.Stdout, metrics)
	if err != nil {
		logging.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	h := handler.NewHandler(svc.jackett, svc.tmdb)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	servers := []*http.Server{
		newServer(net.JoinHostPort("", cfg.Port), handler.NewRouter(h, metrics)),
		newServer(net.JoinHostPort("", cfg.MetricsPort), metricsMux),
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			logging.Info().Str("addr", srv.Addr).Str("version", consts.Version()).Msg("Listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutting down")
	case err = <-errCh:
		logging.Error().Err(err).Msg("Server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logging.Warn().Err(shutdownErr).Str("addr", srv.Addr).Msg("Graceful shutdown failed")
		}
	}
	return err
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
