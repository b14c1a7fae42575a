package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/reconcile/internal/demo"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/inspect"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/render"
)

func serveCmd() *cobra.Command {
	var (
		addr    string
		tick    time.Duration
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo behind the inspector",
		Long: `Render the demo application, step it on a ticker and serve the
inspector: the live document on /snapshot, pass history on /passes,
a WebSocket pass stream on /ws and Prometheus metrics on /metrics.

Examples:
  reconcile serve
  reconcile serve --addr=:7070 --tick=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspector.Addr = addr
			}
			if tick > 0 {
				cfg.Inspector.Tick = tick.String()
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			printBanner(w)
			fmt.Fprintln(w, "  serve")
			fmt.Fprintln(w)
			info(w, "inspector   http://%s", cfg.Inspector.Addr)
			info(w, "tick        %s", cfg.TickInterval())
			fmt.Fprintln(w)

			logger := newLogger(cfg, os.Stderr, verbose)
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector())
			hub := inspect.NewHub(100, logger.With("component", "inspect"))

			opts := []render.Option{
				render.WithLogger(logger.With("component", "render")),
				render.WithBatchDelay(cfg.BatchDelay()),
				render.WithTracer(otel.Tracer(cfg.Tracing.TracerName)),
				render.WithCommitHook(hub.Publish),
			}
			if cfg.Metrics.Enabled {
				opts = append(opts, render.WithMetrics(metrics.New(
					metrics.WithNamespace(cfg.Metrics.Namespace),
					metrics.WithRegistry(registry))))
			}

			app := demo.NewApp()
			opts = append(opts, render.WithLoader(app.Registry))
			c, err := render.New(htmldom.NewDocument().Body(), opts...)
			if err != nil {
				return err
			}
			defer c.Close(context.Background())

			if _, err := c.Render(ctx, app.View()).Await(ctx); err != nil {
				return err
			}
			go runTicker(ctx, app, c, cfg.TickInterval())

			srv := inspect.NewServer(c, hub,
				inspect.WithGatherer(registry),
				inspect.WithLogger(logger.With("component", "inspect")),
				inspect.WithTracing(inspect.WithTracerName(cfg.Tracing.TracerName+"/inspect")))
			err = srv.ListenAndServe(ctx, cfg.Inspector.Addr)
			success(w, "stopped")
			return err
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().DurationVar(&tick, "tick", 0, "Tick interval (default from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every pass")

	return cmd
}

func runTicker(ctx context.Context, app *demo.App, c *render.Container, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.Tick(ctx, c); err != nil && ctx.Err() == nil {
				warn(os.Stderr, "tick: %v", err)
			}
		}
	}
}
