// Package metrics exposes a Runtime's activity counters as Prometheus
// metrics. The collector reads the runtime's atomic stat counters at
// scrape time, so it adds no work to the reactive hot path and is safe
// to scrape from any goroutine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/filament-ui/filament/pkg/reactive"
)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "filament").
	Namespace string

	// Subsystem is the metrics subsystem (default: "reactive").
	Subsystem string

	// ConstLabels are constant labels added to all metrics. Use these to
	// distinguish runtimes when a process hosts several graphs.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registerer to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registerer.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "filament",
		Subsystem: "reactive",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector implements prometheus.Collector over a Runtime's stats.
type Collector struct {
	rt *reactive.Runtime

	signalWrites   *prometheus.Desc
	memoRecomputes *prometheus.Desc
	effectRuns     *prometheus.Desc
	batchFlushes   *prometheus.Desc
	nodesLive      *prometheus.Desc
	nodesDisposed  *prometheus.Desc
}

// Register builds a collector for rt and registers it. The returned
// collector can be unregistered from the same registerer when the
// runtime is torn down.
//
//	collector, err := metrics.Register(rt,
//	    metrics.WithNamespace("myapp"),
//	    metrics.WithConstLabels(prometheus.Labels{"session": id}),
//	)
func Register(rt *reactive.Runtime, opts ...Option) (*Collector, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	fqName := func(name string) string {
		return prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, name)
	}

	c := &Collector{
		rt: rt,
		signalWrites: prometheus.NewDesc(
			fqName("signal_writes_total"),
			"Signal writes that changed a value and triggered propagation.",
			nil, cfg.ConstLabels,
		),
		memoRecomputes: prometheus.NewDesc(
			fqName("memo_recomputes_total"),
			"Memo computations executed.",
			nil, cfg.ConstLabels,
		),
		effectRuns: prometheus.NewDesc(
			fqName("effect_runs_total"),
			"Effect executions, including initial synchronous runs.",
			nil, cfg.ConstLabels,
		),
		batchFlushes: prometheus.NewDesc(
			fqName("flushes_total"),
			"Effect queue flush passes.",
			nil, cfg.ConstLabels,
		),
		nodesLive: prometheus.NewDesc(
			fqName("nodes_live"),
			"Reactive nodes currently held in the arena.",
			nil, cfg.ConstLabels,
		),
		nodesDisposed: prometheus.NewDesc(
			fqName("nodes_disposed_total"),
			"Reactive nodes removed from the arena.",
			nil, cfg.ConstLabels,
		),
	}

	if err := cfg.Registry.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.signalWrites
	ch <- c.memoRecomputes
	ch <- c.effectRuns
	ch <- c.batchFlushes
	ch <- c.nodesLive
	ch <- c.nodesDisposed
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.rt.Stats()

	ch <- prometheus.MustNewConstMetric(c.signalWrites, prometheus.CounterValue, float64(stats.SignalWrites))
	ch <- prometheus.MustNewConstMetric(c.memoRecomputes, prometheus.CounterValue, float64(stats.MemoRecomputes))
	ch <- prometheus.MustNewConstMetric(c.effectRuns, prometheus.CounterValue, float64(stats.EffectRuns))
	ch <- prometheus.MustNewConstMetric(c.batchFlushes, prometheus.CounterValue, float64(stats.BatchFlushes))
	ch <- prometheus.MustNewConstMetric(c.nodesLive, prometheus.GaugeValue, float64(stats.NodesLive))
	ch <- prometheus.MustNewConstMetric(c.nodesDisposed, prometheus.CounterValue, float64(stats.NodesDisposed))
}
