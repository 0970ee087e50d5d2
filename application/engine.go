// Package application provides the application layer for the decision engine.
package application

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/felixgeelhaar/thinker-go/domain/action"
	"github.com/felixgeelhaar/thinker-go/domain/scorer"
	"github.com/felixgeelhaar/thinker-go/domain/sequence"
	"github.com/felixgeelhaar/thinker-go/domain/thinker"
	"github.com/felixgeelhaar/thinker-go/domain/world"
	"github.com/felixgeelhaar/thinker-go/infrastructure/logging"
	"github.com/felixgeelhaar/thinker-go/infrastructure/telemetry"
)

// Engine drives a world of agents, thinkers, and actions through discrete
// ticks. Each tick runs a fixed sequence of passes over the world:
//
//  1. Scorer pass: every thinker's choice trees are evaluated leaves-first,
//     so composite scores always read fresh child scores.
//  2. Thinker pass: every thinker reconciles what should run against what is
//     running (cancel-before-replace).
//  3. Action pass: every leaf action advances one step.
//  4. Sequence pass: Join/Race/Step composites react to child outcomes.
//  5. Cleanup pass: subtrees whose agent is gone are removed.
//
// Deferred world mutations flush between passes, so a pass never observes
// nodes spawned or despawned mid-pass.
type Engine struct {
	world   *world.World
	cmd     *world.Commands
	metrics telemetry.Metrics
	tracer  trace.Tracer

	// thinkers maps an agent to its attached top-level thinker node.
	thinkers map[world.Handle]world.Handle

	tick uint64
}

// EngineConfig contains configuration for the engine.
type EngineConfig struct {
	// World is the node arena to drive. A fresh one is created when nil.
	World *world.World
	// Metrics receives engine telemetry. Defaults to a no-op recorder.
	Metrics telemetry.Metrics
	// Tracer traces engine ticks. Defaults to a no-op tracer.
	Tracer trace.Tracer
}

// NewEngine creates a new engine with the given configuration.
func NewEngine(config EngineConfig) (*Engine, error) {
	w := config.World
	if w == nil {
		w = world.New()
	}

	e := &Engine{
		world:    w,
		cmd:      w.Commands(),
		metrics:  config.Metrics,
		tracer:   config.Tracer,
		thinkers: make(map[world.Handle]world.Handle),
	}

	// Set defaults
	if e.metrics == nil {
		e.metrics = &telemetry.NoopMetricsProvider{}
	}
	if e.tracer == nil {
		e.tracer = noop.NewTracerProvider().Tracer("thinker-go")
	}

	return e, nil
}

// World returns the engine's world.
func (e *Engine) World() *world.World {
	return e.world
}

// Tick returns the number of completed ticks.
func (e *Engine) Tick() uint64 {
	return e.tick
}

// SpawnAgent creates a new agent node.
func (e *Engine) SpawnAgent() world.Handle {
	return e.world.SpawnAgent()
}

// DespawnAgent removes an agent. Its thinker and any running action subtrees
// are removed by the cleanup pass of the next step.
func (e *Engine) DespawnAgent(agent world.Handle) {
	e.world.Despawn(agent)
}

// Attach spawns the built thinker for an agent and registers it. An agent
// holds at most one top-level thinker; attaching again replaces the previous
// one.
func (e *Engine) Attach(agent world.Handle, builder *thinker.Builder) (world.Handle, error) {
	if !e.world.Alive(agent) {
		return world.Nil, errors.New("agent is not alive")
	}
	if prev, ok := e.thinkers[agent]; ok {
		e.cmd.Despawn(prev)
		e.metrics.DecrementActiveThinkers(context.Background())
	}

	node := builder.Spawn(e.cmd, agent)
	e.cmd.Flush()

	e.thinkers[agent] = node
	e.metrics.IncrementActiveThinkers(context.Background())

	logging.Debug().
		Add(logging.Component("engine")).
		Add(logging.Actor(agent)).
		Add(logging.Thinker(node)).
		Msg("thinker attached")

	return node, nil
}

// Detach requests cooperative shutdown of an agent's thinker. The thinker
// cancels its running action, waits for it to wind down, and then completes;
// the cleanup pass removes the node once the agent despawns, or callers can
// observe the thinker reaching Success.
func (e *Engine) Detach(agent world.Handle) {
	node, ok := e.thinkers[agent]
	if !ok {
		return
	}
	if e.world.Alive(node) {
		e.world.CancelIfExecuting(node)
	}
}

// Thinker returns the thinker node attached to an agent.
func (e *Engine) Thinker(agent world.Handle) (world.Handle, bool) {
	node, ok := e.thinkers[agent]
	if !ok || !e.world.Alive(node) {
		return world.Nil, false
	}
	return node, true
}

// Step advances the world by one tick.
func (e *Engine) Step(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ctx, span := e.tracer.Start(ctx, "engine.tick",
		trace.WithAttributes(attribute.Int64("tick", int64(e.tick))))
	defer span.End()

	start := time.Now()

	e.scorerPass(ctx)
	e.cmd.Flush()

	e.thinkerPass(ctx)
	e.cmd.Flush()

	e.actionPass(ctx)
	e.cmd.Flush()

	e.sequencePass(ctx)
	e.cmd.Flush()

	e.cleanupPass(ctx)
	e.cmd.Flush()

	e.metrics.RecordTickDuration(ctx, time.Since(start), len(e.thinkers))
	e.tick++

	return nil
}

// Run steps the engine until the context is cancelled or ticks elapse.
// A zero tick count runs until cancellation.
func (e *Engine) Run(ctx context.Context, ticks uint64) error {
	for i := uint64(0); ticks == 0 || i < ticks; i++ {
		if err := e.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// scorerPass evaluates every thinker's choice trees, leaves first.
func (e *Engine) scorerPass(ctx context.Context) {
	e.world.EachAction(func(h world.Handle, data any) {
		th, ok := data.(*thinker.Thinker)
		if !ok {
			return
		}
		for _, choice := range th.Choices() {
			scorer.Evaluate(e.world, choice.Scorer)
			e.metrics.RecordScorerEvaluation(ctx, e.world.ScoreValue(choice.Scorer))
		}
	})
}

// thinkerPass reconciles every thinker against its running action.
func (e *Engine) thinkerPass(ctx context.Context) {
	e.world.EachAction(func(h world.Handle, data any) {
		th, ok := data.(*thinker.Thinker)
		if !ok {
			return
		}

		outcome := th.Reconcile(e.world, e.cmd, h)

		switch outcome {
		case thinker.OutcomeIdle:
			return
		case thinker.OutcomeSpawned:
			e.metrics.RecordSpawn(ctx, "thinker")
		case thinker.OutcomeCancelling:
			e.metrics.RecordCancellation(ctx, "replaced")
		}
		e.metrics.RecordPick(ctx, outcome.String(), "thinker")

		logging.Debug().
			Add(logging.Component("engine")).
			Add(logging.Pass("thinker")).
			Add(logging.Tick(e.tick)).
			Add(logging.Thinker(h)).
			Add(logging.Actor(e.world.Actor(h))).
			Add(logging.Outcome(outcome)).
			Msg("thinker reconciled")
	})
}

// actionPass advances every live leaf action by one step.
func (e *Engine) actionPass(ctx context.Context) {
	e.world.EachAction(func(h world.Handle, data any) {
		leaf, ok := data.(action.Leaf)
		if !ok {
			return
		}

		state := e.world.State(h)
		if state.IsTerminal() {
			return
		}

		next := leaf.Tick(state, e.world.Actor(h))
		if next == state {
			return
		}
		e.world.SetState(h, next)
		e.metrics.RecordTransition(ctx, state.String(), next.String())
		if next.IsTerminal() {
			e.metrics.RecordCompletion(ctx, next.String())
		}

		logging.Trace().
			Add(logging.Component("engine")).
			Add(logging.Pass("action")).
			Add(logging.Tick(e.tick)).
			Add(logging.Action(h)).
			Add(logging.FromState(state)).
			Add(logging.ToState(next)).
			Msg("action advanced")
	})
}

// sequencePass lets Join/Race/Step composites react to child outcomes.
func (e *Engine) sequencePass(ctx context.Context) {
	e.world.EachAction(func(h world.Handle, data any) {
		seq, ok := data.(*sequence.Sequence)
		if !ok {
			return
		}
		before := e.world.State(h)
		seq.Tick(e.world, e.cmd, h)
		after := e.world.State(h)
		if after != before {
			e.metrics.RecordTransition(ctx, before.String(), after.String())
			if after.IsTerminal() {
				e.metrics.RecordCompletion(ctx, after.String())
			}
		}
	})
}

// cleanupPass removes thinker subtrees whose agent is gone and drops
// registrations for despawned thinkers.
func (e *Engine) cleanupPass(ctx context.Context) {
	e.world.EachAction(func(h world.Handle, data any) {
		if _, ok := data.(*thinker.Thinker); !ok {
			return
		}
		actor := e.world.Actor(h)
		if !e.world.Alive(actor) {
			e.cmd.Despawn(h)
			logging.Debug().
				Add(logging.Component("engine")).
				Add(logging.Pass("cleanup")).
				Add(logging.Thinker(h)).
				Add(logging.Reason("agent despawned")).
				Msg("thinker removed")
		}
	})

	for agent, node := range e.thinkers {
		if !e.world.Alive(agent) || !e.world.Alive(node) {
			delete(e.thinkers, agent)
			e.metrics.DecrementActiveThinkers(ctx)
		}
	}
}
