package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/plop/internal/config"
	"github.com/vango-dev/plop/internal/demo"
	"github.com/vango-dev/plop/internal/server"
	"github.com/vango-dev/plop/pkg/session"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr  string
		items int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo over HTTP",
		Long: `Run the lift-and-plop list on a real-time loop and serve it over HTTP.

Endpoints:
  GET  /snapshot       current HTML
  GET  /model          item order as JSON
  POST /steps/{step}   fire a step such as dragover:number-2
  POST /events         apply a binary event frame
  GET  /patches        drain rendered patches as binary frames
  GET  /metrics        Prometheus metrics (when metrics.enabled)

The list order is saved after every drop, in memory or under state.dir,
and restored on the next start.

Examples:
  plop serve
  plop serve --addr :8080 --items 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags, addr, items)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from metrics.addr)")
	cmd.Flags().IntVarP(&items, "items", "n", demo.DefaultItems, "Number of list items")

	return cmd
}

func runServe(flags *globalFlags, addr string, items int) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	interval, err := cfg.FrameInterval()
	if err != nil {
		return err
	}
	logger := loggerFor(cfg)

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	store, err := storeFor(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	ttl, err := cfg.StateTTL()
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Demo:          demoConfig(cfg, items),
		FrameInterval: interval,
		RemoteEvents:  cfg.Mount.RemoteEvents,
		Registry:      reg,
		Namespace:     cfg.Metrics.Namespace,
		Tracer:        tracerFor(cfg),
		Logger:        logger,
		Store:         store,
		SessionName:   cfg.State.Session,
		StateTTL:      ttl,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printBanner()
	success("Serving lift-and-plop on http://%s", addr)
	info("Snapshot: http://%s/snapshot", addr)
	if reg != nil {
		info("Metrics:  http://%s/metrics", addr)
	}
	fmt.Println()

	errc := make(chan error, 1)
	go func() { errc <- httpServer.ListenAndServe() }()

	select {
	case err := <-errc:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		fmt.Println("\n  Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// storeFor returns a file store under state.dir, or a memory store when no
// directory is configured.
func storeFor(cfg *config.Config) (session.Store, error) {
	if cfg.State.Dir == "" {
		return session.NewMemoryStore(), nil
	}
	dir := cfg.State.Dir
	if !filepath.IsAbs(dir) && cfg.Dir() != "" {
		dir = filepath.Join(cfg.Dir(), dir)
	}
	return session.NewFileStore(dir)
}
