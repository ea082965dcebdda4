package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/carbyne-dev/carbyne/internal/config"
	"github.com/carbyne-dev/carbyne/internal/demo"
	"github.com/carbyne-dev/carbyne/pkg/atom"
	"github.com/carbyne-dev/carbyne/pkg/devtools"
	"github.com/carbyne-dev/carbyne/pkg/dom/htmldom"
	"github.com/carbyne-dev/carbyne/pkg/metrics"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo tree with the inspector",
		Long: `Mount the demo tree, tick it on an interval and serve the inspector.

Endpoints:
  /         rendered document
  /tree     node tree as JSON
  /metrics  Prometheus metrics
  /ws       live mutation stream

Examples:
  carbyne serve
  carbyne serve --addr=:8080
  carbyne serve --config=carbyne.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Devtools.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: carbyne.json or carbyne.yaml in the working directory)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Logger(os.Stderr)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts := []atom.Option{atom.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		opts = append(opts, atom.WithMetrics(metrics.New(
			metrics.WithRegistry(reg),
			metrics.WithNamespace(cfg.Metrics.Namespace),
		)))
	}

	doc := htmldom.New()
	rt := atom.NewRuntime(doc, opts...)
	app := demo.New(time.Now(), logger)
	if err := rt.Mount(app.Root, doc.Body(), nil); err != nil {
		return err
	}

	srv := devtools.NewServer(rt, doc, app.Root,
		devtools.WithLogger(logger),
		devtools.WithGatherer(reg),
		devtools.WithAllowedOrigins(cfg.Devtools.AllowedOrigins))
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Devtools.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := rt.Loop().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.TickDuration())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				if err := rt.Loop().Dispatch(func() { app.Tick(now) }); err != nil {
					return err
				}
			}
		}
	})
	g.Go(func() error {
		logger.Info("devtools listening", "addr", cfg.Devtools.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
