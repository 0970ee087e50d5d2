package application

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/thinker-go/domain/world"
	"github.com/felixgeelhaar/thinker-go/infrastructure/telemetry"
)

// Option configures the engine.
type Option func(*EngineConfig)

// WithWorld sets the world the engine drives.
func WithWorld(w *world.World) Option {
	return func(c *EngineConfig) {
		c.World = w
	}
}

// WithMetrics sets the telemetry recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *EngineConfig) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer for engine ticks.
func WithTracer(t trace.Tracer) Option {
	return func(c *EngineConfig) {
		c.Tracer = t
	}
}

// NewEngineWithOptions creates an engine with functional options.
func NewEngineWithOptions(opts ...Option) (*Engine, error) {
	config := EngineConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	return NewEngine(config)
}
