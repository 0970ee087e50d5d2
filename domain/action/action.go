// Package action provides the behavior-template and leaf-action contracts
// for the decision engine. Action nodes follow the four-state lifecycle
// defined by the world package: they start in Executing, may be asked to
// wind down via Cancelled, and end in Success or Failure.
package action

import (
	"github.com/google/uuid"

	"github.com/felixgeelhaar/thinker-go/domain/world"
)

// Template instantiates a fresh action node subtree on demand. Templates
// are cheaply shareable descriptors: a single template may back any number
// of choices, schedule entries, and composite steps, and is never mutated
// after construction. Spawn must fully attach the subtree through the sink
// and return its root.
type Template interface {
	Spawn(cmd *world.Commands, actor world.Handle) world.Handle
}

// Instance pairs a Template with an opaque identity token. Thinkers compare
// tokens, never structural equality, to decide whether a pick is "the same
// action I'm already running": two structurally identical templates used
// independently stay distinct.
type Instance struct {
	id   uuid.UUID
	tmpl Template
}

// NewInstance wraps a template with a fresh identity token.
func NewInstance(tmpl Template) Instance {
	return Instance{id: uuid.New(), tmpl: tmpl}
}

// Zero reports whether the instance is empty.
func (i Instance) Zero() bool {
	return i.tmpl == nil
}

// Same compares identity tokens.
func (i Instance) Same(other Instance) bool {
	return !i.Zero() && i.id == other.id
}

// Spawn instantiates the underlying template.
func (i Instance) Spawn(cmd *world.Commands, actor world.Handle) world.Handle {
	return i.tmpl.Spawn(cmd, actor)
}

// Leaf is the contract for leaf actions: domain work that advances a little
// every tick and self-reports completion. Tick receives the node's current
// state and returns the next one. Implementations must resolve Cancelled to
// a terminal state once their cleanup is done, and must treat missing world
// input as a local Failure rather than panicking.
type Leaf interface {
	Tick(state world.ActionState, actor world.Handle) world.ActionState
}

// Func adapts a plain function to both the Leaf and Template contracts.
// Spawning attaches the function itself as the node payload.
type Func func(state world.ActionState, actor world.Handle) world.ActionState

// Tick implements Leaf.
func (f Func) Tick(state world.ActionState, actor world.Handle) world.ActionState {
	return f(state, actor)
}

// Spawn implements Template.
func (f Func) Spawn(cmd *world.Commands, actor world.Handle) world.Handle {
	h := cmd.SpawnAction(actor)
	cmd.SetData(h, f)
	return h
}

// Noop is a leaf action that succeeds immediately, and fails when asked to
// wind down before its first tick.
func Noop() Template {
	return Func(func(state world.ActionState, _ world.Handle) world.ActionState {
		switch state {
		case world.Executing:
			return world.Success
		case world.Cancelled:
			return world.Failure
		default:
			return state
		}
	})
}
