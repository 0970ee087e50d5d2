// Package telemetry provides observability infrastructure including
// OpenTelemetry metrics support for the decision engine.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	picks             metric.Int64Counter
	spawns            metric.Int64Counter
	cancellations     metric.Int64Counter
	completions       metric.Int64Counter
	transitions       metric.Int64Counter
	scorerEvaluations metric.Int64Counter

	// Histograms
	tickDuration metric.Float64Histogram
	scoreValues  metric.Float64Histogram

	// Gauges (using UpDownCounter for OpenTelemetry)
	activeThinkers metric.Int64UpDownCounter
	activeActions  metric.Int64UpDownCounter

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/thinker-go").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// Attributes are default attributes to attach to all metrics.
	Attributes []attribute.KeyValue
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/thinker-go",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}

	provider := otel.GetMeterProvider()
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	// Counters
	mp.picks, err = mp.meter.Int64Counter(
		"thinker.picks",
		metric.WithDescription("Number of thinker arbitration decisions"),
		metric.WithUnit("{pick}"),
	)
	if err != nil {
		return err
	}

	mp.spawns, err = mp.meter.Int64Counter(
		"thinker.action.spawns",
		metric.WithDescription("Number of action instantiations"),
		metric.WithUnit("{spawn}"),
	)
	if err != nil {
		return err
	}

	mp.cancellations, err = mp.meter.Int64Counter(
		"thinker.action.cancellations",
		metric.WithDescription("Number of cancellation requests issued to running actions"),
		metric.WithUnit("{cancellation}"),
	)
	if err != nil {
		return err
	}

	mp.completions, err = mp.meter.Int64Counter(
		"thinker.action.completions",
		metric.WithDescription("Number of actions that reached a terminal state"),
		metric.WithUnit("{completion}"),
	)
	if err != nil {
		return err
	}

	mp.transitions, err = mp.meter.Int64Counter(
		"thinker.action.transitions",
		metric.WithDescription("Number of action lifecycle transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return err
	}

	mp.scorerEvaluations, err = mp.meter.Int64Counter(
		"thinker.scorer.evaluations",
		metric.WithDescription("Number of scorer tree evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return err
	}

	// Histograms
	mp.tickDuration, err = mp.meter.Float64Histogram(
		"thinker.tick.duration",
		metric.WithDescription("Duration of engine ticks"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.scoreValues, err = mp.meter.Float64Histogram(
		"thinker.scorer.values",
		metric.WithDescription("Distribution of top-level scorer values"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	// Gauges (UpDownCounters)
	mp.activeThinkers, err = mp.meter.Int64UpDownCounter(
		"thinker.thinkers.active",
		metric.WithDescription("Number of attached thinkers"),
		metric.WithUnit("{thinker}"),
	)
	if err != nil {
		return err
	}

	mp.activeActions, err = mp.meter.Int64UpDownCounter(
		"thinker.actions.active",
		metric.WithDescription("Number of live action nodes"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordPick records a thinker arbitration decision.
func (mp *MetricsProvider) RecordPick(ctx context.Context, outcome string, source string) {
	attrs := []attribute.KeyValue{
		attribute.String("pick.outcome", outcome),
		attribute.String("pick.source", source),
	}

	mp.picks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSpawn records an action instantiation.
func (mp *MetricsProvider) RecordSpawn(ctx context.Context, source string) {
	attrs := []attribute.KeyValue{
		attribute.String("pick.source", source),
	}

	mp.spawns.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.activeActions.Add(ctx, 1)
}

// RecordCancellation records a cancellation request issued to a running action.
func (mp *MetricsProvider) RecordCancellation(ctx context.Context, reason string) {
	attrs := []attribute.KeyValue{
		attribute.String("cancel.reason", reason),
	}

	mp.cancellations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCompletion records an action reaching a terminal state.
func (mp *MetricsProvider) RecordCompletion(ctx context.Context, finalState string) {
	attrs := []attribute.KeyValue{
		attribute.String("state.final", finalState),
	}

	mp.completions.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.activeActions.Add(ctx, -1)
}

// RecordTransition records an action lifecycle transition.
func (mp *MetricsProvider) RecordTransition(ctx context.Context, fromState, toState string) {
	attrs := []attribute.KeyValue{
		attribute.String("state.from", fromState),
		attribute.String("state.to", toState),
	}

	mp.transitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordScorerEvaluation records a scorer tree evaluation and its result.
func (mp *MetricsProvider) RecordScorerEvaluation(ctx context.Context, value float64) {
	mp.scorerEvaluations.Add(ctx, 1)
	mp.scoreValues.Record(ctx, value)
}

// RecordTickDuration records the duration of an engine tick.
func (mp *MetricsProvider) RecordTickDuration(ctx context.Context, duration time.Duration, thinkers int) {
	attrs := []attribute.KeyValue{
		attribute.Int("thinkers.count", thinkers),
	}

	mp.tickDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// IncrementActiveThinkers increments the active thinkers gauge.
func (mp *MetricsProvider) IncrementActiveThinkers(ctx context.Context) {
	mp.activeThinkers.Add(ctx, 1)
}

// DecrementActiveThinkers decrements the active thinkers gauge.
func (mp *MetricsProvider) DecrementActiveThinkers(ctx context.Context) {
	mp.activeThinkers.Add(ctx, -1)
}

// NoopMetricsProvider is a no-op metrics provider for testing or when metrics are disabled.
type NoopMetricsProvider struct{}

// RecordPick is a no-op.
func (n *NoopMetricsProvider) RecordPick(ctx context.Context, outcome string, source string) {}

// RecordSpawn is a no-op.
func (n *NoopMetricsProvider) RecordSpawn(ctx context.Context, source string) {}

// RecordCancellation is a no-op.
func (n *NoopMetricsProvider) RecordCancellation(ctx context.Context, reason string) {}

// RecordCompletion is a no-op.
func (n *NoopMetricsProvider) RecordCompletion(ctx context.Context, finalState string) {}

// RecordTransition is a no-op.
func (n *NoopMetricsProvider) RecordTransition(ctx context.Context, fromState, toState string) {}

// RecordScorerEvaluation is a no-op.
func (n *NoopMetricsProvider) RecordScorerEvaluation(ctx context.Context, value float64) {}

// RecordTickDuration is a no-op.
func (n *NoopMetricsProvider) RecordTickDuration(ctx context.Context, duration time.Duration, thinkers int) {}

// IncrementActiveThinkers is a no-op.
func (n *NoopMetricsProvider) IncrementActiveThinkers(ctx context.Context) {}

// DecrementActiveThinkers is a no-op.
func (n *NoopMetricsProvider) DecrementActiveThinkers(ctx context.Context) {}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordPick(ctx context.Context, outcome string, source string)
	RecordSpawn(ctx context.Context, source string)
	RecordCancellation(ctx context.Context, reason string)
	RecordCompletion(ctx context.Context, finalState string)
	RecordTransition(ctx context.Context, fromState, toState string)
	RecordScorerEvaluation(ctx context.Context, value float64)
	RecordTickDuration(ctx context.Context, duration time.Duration, thinkers int)
	IncrementActiveThinkers(ctx context.Context)
	DecrementActiveThinkers(ctx context.Context)
}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = (*NoopMetricsProvider)(nil)
)
