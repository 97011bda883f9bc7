package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagarc03/livestow"
	"github.com/sagarc03/livestow/config"
	livehttp "github.com/sagarc03/livestow/http"
	"github.com/sagarc03/livestow/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the livestow HTTP server.

PUT /<name> uploads an object, GET /<name> streams it while the upload is
still running, DELETE /<name> removes it.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default: 127.0.0.1, env: LIVESTOW_SERVER_HOST)")
	serveCmd.Flags().Int("port", 8080, "HTTP server port (env: LIVESTOW_SERVER_PORT)")
	serveCmd.Flags().Duration("stale-timeout", livestow.DefaultStaleTimeout, "quiet period after which downloads of an unfinished upload end")
	serveCmd.Flags().Int("chunk-size", livestow.DefaultChunkSize, "maximum bytes read from an upload per chunk")
	serveCmd.Flags().Bool("metrics", false, "serve Prometheus metrics on a separate port")
	serveCmd.Flags().Int("metrics-port", 9090, "Prometheus metrics port")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var recorder livestow.Recorder
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.New(reg)

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr(),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	service, err := livestow.NewLiveService(livestow.NewRegistry(), livestow.ServiceConfig{
		StaleTimeout: cfg.Store.StaleTimeout,
		ChunkSize:    cfg.Store.ChunkSize,
		Recorder:     recorder,
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handler := livehttp.NewHandler(&livehttp.HandlerConfig{CORS: cfg.CORS}, service)

	// Uploads and downloads may stay open for as long as the producer keeps
	// sending, so only the header read is bounded.
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", server.Addr, "stale_timeout", service.StaleTimeout())
		return listen(server)
	})

	if metricsServer != nil {
		g.Go(func() error {
			slog.Info("starting metrics server", "addr", metricsServer.Addr)
			return listen(metricsServer)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		shutdown(shutdownCtx, server)
		if metricsServer != nil {
			shutdown(shutdownCtx, metricsServer)
		}
		return nil
	})

	return g.Wait()
}

func listen(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// shutdown drains in-flight requests and closes whatever is still open once
// ctx expires. Live downloads of an idle upload only end after the stale
// timeout, so they are the usual reason to reach Close.
func shutdown(ctx context.Context, server *http.Server) {
	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("server shutdown incomplete, closing connections", "addr", server.Addr, "err", err)
		_ = server.Close()
	}
}
