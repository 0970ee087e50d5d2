// Package thinker provides the per-agent orchestrator: it owns a picker, a
// list of scored choices, an optional fallback action, and a FIFO queue of
// scheduled one-shot actions, and drives at most one action subtree at a
// time through a strict cancel-before-replace protocol.
package thinker

import (
	"github.com/felixgeelhaar/thinker-go/domain/action"
	"github.com/felixgeelhaar/thinker-go/domain/picker"
	"github.com/felixgeelhaar/thinker-go/domain/scorer"
	"github.com/felixgeelhaar/thinker-go/domain/world"
)

// Builder assembles a thinker definition: which picker arbitrates, which
// (scorer, action) choices compete, and what runs when nothing wins. A
// Builder is itself an action template, so thinkers can nest anywhere an
// action template is accepted.
type Builder struct {
	picker    picker.Picker
	choices   []choiceTemplate
	otherwise action.Instance
}

type choiceTemplate struct {
	when scorer.Template
	then action.Instance
}

// New creates a Builder arbitrating with the given picker.
func New(p picker.Picker) *Builder {
	return &Builder{picker: p}
}

// Highest creates a Builder arbitrating with a Highest picker.
func Highest(threshold float64) *Builder {
	return New(picker.NewHighest(threshold))
}

// FirstToScore creates a Builder arbitrating with a FirstToScore picker.
func FirstToScore(threshold float64) *Builder {
	return New(picker.NewFirstToScore(threshold))
}

// When adds a choice: when the scorer wins arbitration, the action runs.
// The action template receives its identity token here; registering the
// same template twice produces two distinct choices.
func (b *Builder) When(when scorer.Template, then action.Template) *Builder {
	b.choices = append(b.choices, choiceTemplate{when: when, then: action.NewInstance(then)})
	return b
}

// Otherwise sets the default action to run when the picker picks nothing
// and the schedule queue is empty.
func (b *Builder) Otherwise(tmpl action.Template) *Builder {
	b.otherwise = action.NewInstance(tmpl)
	return b
}

// Spawn implements action.Template: it creates the thinker node, spawns
// every choice's scorer subtree as a child, and attaches the Thinker
// payload.
func (b *Builder) Spawn(cmd *world.Commands, actor world.Handle) world.Handle {
	h := cmd.SpawnAction(actor)

	t := &Thinker{
		picker:    b.picker,
		otherwise: b.otherwise,
		choices:   make([]picker.Choice, 0, len(b.choices)),
	}
	for _, ct := range b.choices {
		scorerRoot := ct.when.Spawn(cmd, actor)
		cmd.AddChild(h, scorerRoot)
		t.choices = append(t.choices, picker.Choice{Scorer: scorerRoot, Action: ct.then})
	}

	cmd.SetData(h, t)
	return h
}

// Thinker is the node payload orchestrating one agent's behavior. It is
// mutated only during the thinker pass.
type Thinker struct {
	picker    picker.Picker
	choices   []picker.Choice
	otherwise action.Instance
	scheduled []action.Instance

	current     world.Handle
	currentInst action.Instance
}

// Choices returns the thinker's choices; the engine evaluates each choice's
// scorer subtree every tick for the thinker's whole lifetime, whether or
// not the paired action is running.
func (t *Thinker) Choices() []picker.Choice {
	return t.choices
}

// Current returns the running action subtree's root, or Nil when the slot
// is empty.
func (t *Thinker) Current() world.Handle {
	return t.current
}

// Schedule enqueues a one-shot action. Scheduled actions pre-empt
// arbitration: a non-empty queue forces the cancel path on whatever is
// currently running.
func (t *Thinker) Schedule(tmpl action.Template) {
	t.scheduled = append(t.scheduled, action.NewInstance(tmpl))
}

// HasScheduled reports whether one-shot actions are queued.
func (t *Thinker) HasScheduled() bool {
	return len(t.scheduled) > 0
}

// Outcome reports what a Reconcile call did, for the engine's logging and
// metrics.
type Outcome uint8

const (
	// OutcomeIdle means nothing was running and nothing qualified.
	OutcomeIdle Outcome = iota

	// OutcomeKept means the pick matched the running action's identity.
	OutcomeKept

	// OutcomeSpawned means a new action subtree was instantiated.
	OutcomeSpawned

	// OutcomeCancelling means the running action was asked to wind down to
	// make room for a different pick.
	OutcomeCancelling

	// OutcomeWaiting means a previously issued cancellation has not
	// resolved yet.
	OutcomeWaiting

	// OutcomeSelfDone means the thinker resolved its own cancellation and
	// became Success.
	OutcomeSelfDone
)

// String returns the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeKept:
		return "kept"
	case OutcomeSpawned:
		return "spawned"
	case OutcomeCancelling:
		return "cancelling"
	case OutcomeWaiting:
		return "waiting"
	case OutcomeSelfDone:
		return "self_done"
	default:
		return "unknown"
	}
}

// Reconcile runs the thinker's per-tick state machine:
//
//  1. A terminal running action is torn down and its slot cleared.
//  2. The next candidate comes from the schedule queue first, then the
//     picker, then the otherwise slot.
//  3. Nothing qualified: idle (a live incumbent keeps running).
//  4. Empty slot: instantiate the candidate.
//  5. Same identity as the incumbent: leave it untouched.
//  6. Different identity: ask the incumbent to wind down and wait; the
//     replacement is never instantiated while the incumbent is
//     non-terminal.
//
// Scheduled entries are popped only when actually instantiated, so a
// one-shot is never lost to a slow cancellation.
func (t *Thinker) Reconcile(w *world.World, cmd *world.Commands, self world.Handle) Outcome {
	if outcome, handled := t.reconcileSelf(w, cmd, self); handled {
		return outcome
	}

	if !t.current.IsNil() && w.State(t.current).IsTerminal() {
		t.clear(cmd)
	}

	next, fromSchedule := t.next(w)
	if next.Zero() {
		if t.current.IsNil() {
			return OutcomeIdle
		}
		return OutcomeKept
	}

	if t.current.IsNil() {
		if fromSchedule {
			t.scheduled = t.scheduled[1:]
		}
		h := next.Spawn(cmd, w.Actor(self))
		cmd.AddChild(self, h)
		t.current = h
		t.currentInst = next
		return OutcomeSpawned
	}

	if next.Same(t.currentInst) {
		return OutcomeKept
	}

	if w.State(t.current) == world.Executing {
		w.SetState(t.current, world.Cancelled)
		return OutcomeCancelling
	}
	return OutcomeWaiting
}

// reconcileSelf handles cancellation of the thinker itself: the request
// propagates to the running action exactly once, and the thinker reports
// its own success once the action has wound down and been torn down.
func (t *Thinker) reconcileSelf(w *world.World, cmd *world.Commands, self world.Handle) (Outcome, bool) {
	switch w.State(self) {
	case world.Cancelled:
		if t.current.IsNil() {
			w.SetState(self, world.Success)
			return OutcomeSelfDone, true
		}
		if w.State(t.current).IsTerminal() {
			t.clear(cmd)
			w.SetState(self, world.Success)
			return OutcomeSelfDone, true
		}
		w.CancelIfExecuting(t.current)
		return OutcomeWaiting, true

	case world.Success, world.Failure:
		return OutcomeIdle, true
	}
	return OutcomeIdle, false
}

func (t *Thinker) next(w *world.World) (action.Instance, bool) {
	if len(t.scheduled) > 0 {
		return t.scheduled[0], true
	}
	if inst, ok := t.picker.Pick(t.choices, w); ok {
		return inst, false
	}
	return t.otherwise, false
}

func (t *Thinker) clear(cmd *world.Commands) {
	cmd.Despawn(t.current)
	t.current = world.Nil
	t.currentInst = action.Instance{}
}
