package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/filament-ui/filament/pkg/inspect"
	"github.com/filament-ui/filament/pkg/metrics"
	"github.com/filament-ui/filament/pkg/reactive"
)

func demoCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a live counter graph with the HTTP inspector",
		Long: `Run a small reactive graph driven by a timer and serve the
inspector next to it:

  GET /api/graph   dependency graph snapshot
  GET /api/stats   runtime counters
  GET /ws          live propagation events
  GET /metrics     Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(addr, interval)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8090", "Inspector listen address")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "Counter tick interval")

	return cmd
}

func runDemo(addr string, interval time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	loop := reactive.NewLoop()
	if err := reactive.InitLoop(loop); err != nil {
		return fmt.Errorf("install executor: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The graph lives on this goroutine; the loop drains spawned flush
	// tasks between ticks.
	rt := reactive.CurrentRuntime()
	defer reactive.ReleaseRuntime()
	rt.SetLogger(logger)

	count, setCount := reactive.NewSignal(0)
	label := reactive.NewMemo(func(prev *string) string {
		return fmt.Sprintf("tick #%d", count.Get())
	})
	reactive.NewEffect(func() reactive.Cleanup {
		logger.Info("counter changed", "label", label.Get())
		return nil
	})

	inspector := inspect.NewServer(rt,
		inspect.WithLogger(logger),
		inspect.WithDispatch(func(fn func()) { loop.Push(fn) }),
	)
	if _, err := metrics.Register(rt); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	router := chi.NewRouter()
	router.Mount("/", inspector.Handler())
	router.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{Addr: addr, Handler: router}
	go func() {
		logger.Info("inspector listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("inspector server failed", "error", err)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			setCount.Update(func(v int) int { return v + 1 })
			loop.Tick()

		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown failed", "error", err)
			}
			rt.Dispose()
			return nil
		}
	}
}
