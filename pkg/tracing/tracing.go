// Package tracing instruments a Runtime with OpenTelemetry spans. Flush
// passes, effect executions and memo recomputations each become a span
// on the configured tracer, carrying the node handle and timing as
// attributes.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/filament-ui/filament/pkg/reactive"
)

// Config configures runtime instrumentation.
type Config struct {
	// TracerName names the tracer obtained from the provider.
	// Default: "filament.reactive".
	TracerName string

	// Provider supplies the tracer. Default: the global otel provider.
	Provider trace.TracerProvider

	// Attributes are added to every span, typically a session or
	// component identifier.
	Attributes []attribute.KeyValue
}

// Option configures instrumentation.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = tp
	}
}

// WithAttributes adds constant attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *Config) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Instrument installs observation hooks on rt that emit spans for each
// flush pass, effect run and memo recomputation. It replaces any hooks
// previously installed on the runtime, so call it once during setup.
func Instrument(rt *reactive.Runtime, opts ...Option) {
	cfg := Config{TracerName: "filament.reactive"}
	for _, opt := range opts {
		opt(&cfg)
	}

	var tracer trace.Tracer
	if cfg.Provider != nil {
		tracer = cfg.Provider.Tracer(cfg.TracerName)
	} else {
		tracer = otel.Tracer(cfg.TracerName)
	}

	// Hooks report after the fact, so spans are reconstructed backwards
	// from the observed duration.
	record := func(name string, d time.Duration, attrs ...attribute.KeyValue) {
		end := time.Now()
		_, span := tracer.Start(context.Background(), name,
			trace.WithTimestamp(end.Add(-d)),
			trace.WithAttributes(cfg.Attributes...),
			trace.WithAttributes(attrs...),
		)
		span.End(trace.WithTimestamp(end))
	}

	rt.SetHooks(reactive.Hooks{
		OnMemoRecompute: func(h reactive.Handle, d time.Duration) {
			record("reactive.memo.compute", d,
				attribute.String("reactive.node", h.String()),
			)
		},
		OnEffectRun: func(h reactive.Handle, d time.Duration) {
			record("reactive.effect.run", d,
				attribute.String("reactive.node", h.String()),
			)
		},
		OnFlush: func(effects int, d time.Duration) {
			record("reactive.flush", d,
				attribute.Int("reactive.effects", effects),
			)
		},
	})
}
