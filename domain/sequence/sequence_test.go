package sequence

import (
	"testing"

	"github.com/felixgeelhaar/thinker-go/domain/action"
	"github.com/felixgeelhaar/thinker-go/domain/world"
)

// harness spawns a composite template and drives it without the engine:
// tick leaf children through their payloads, then tick the sequence, then
// flush.
type harness struct {
	w    *world.World
	cmd  *world.Commands
	root world.Handle
	seq  *Sequence
}

func newHarness(t *testing.T, tmpl action.Template) *harness {
	t.Helper()
	w := world.New()
	cmd := w.Commands()
	agent := w.SpawnAgent()
	root := tmpl.Spawn(cmd, agent)
	cmd.Flush()

	seq, ok := w.Data(root).(*Sequence)
	if !ok {
		t.Fatalf("composite root carries %T, want *Sequence", w.Data(root))
	}
	return &harness{w: w, cmd: cmd, root: root, seq: seq}
}

// tick advances leaves then the sequence, mirroring the engine's pass order.
func (h *harness) tick() {
	h.w.EachAction(func(node world.Handle, data any) {
		leaf, ok := data.(action.Leaf)
		if !ok {
			return
		}
		state := h.w.State(node)
		if state.IsTerminal() {
			return
		}
		h.w.SetState(node, leaf.Tick(state, h.w.Actor(node)))
	})
	h.seq.Tick(h.w, h.cmd, h.root)
	h.cmd.Flush()
}

func (h *harness) state() world.ActionState {
	return h.w.State(h.root)
}

// stubbed leaves for driving composites into specific shapes.

// succeedAfter succeeds on its nth tick; cancellation fails it.
func succeedAfter(n int) action.Template {
	ticks := 0
	return action.Func(func(state world.ActionState, _ world.Handle) world.ActionState {
		if state == world.Cancelled {
			return world.Failure
		}
		ticks++
		if ticks >= n {
			return world.Success
		}
		return world.Executing
	})
}

// failAfter fails on its nth tick.
func failAfter(n int) action.Template {
	ticks := 0
	return action.Func(func(state world.ActionState, _ world.Handle) world.ActionState {
		if state == world.Cancelled {
			return world.Failure
		}
		ticks++
		if ticks >= n {
			return world.Failure
		}
		return world.Executing
	})
}

// forever keeps executing until cancelled, then succeeds its wind-down.
func forever(cancelled *bool) action.Template {
	return action.Func(func(state world.ActionState, _ world.Handle) world.ActionState {
		if state == world.Cancelled {
			if cancelled != nil {
				*cancelled = true
			}
			return world.Success
		}
		return world.Executing
	})
}

func TestJoin_AllSucceed(t *testing.T) {
	h := newHarness(t, Join(succeedAfter(1), succeedAfter(2)))

	h.tick()
	if got := h.state(); got != world.Executing {
		t.Fatalf("state after tick 1 = %v, want Executing", got)
	}

	h.tick()
	if got := h.state(); got != world.Success {
		t.Errorf("state after tick 2 = %v, want Success", got)
	}
}

func TestJoin_FailureCancelsEarlierChildren(t *testing.T) {
	var cancelled bool
	h := newHarness(t, Join(forever(&cancelled), failAfter(1)))

	h.tick()
	if got := h.state(); got != world.Failure {
		t.Fatalf("state = %v, want Failure", got)
	}
	if !h.w.State(h.w.Children(h.root)[0]).IsTerminal() && h.w.State(h.w.Children(h.root)[0]) != world.Cancelled {
		t.Error("running sibling before the failure should be cancelled")
	}
}

func TestJoin_Empty(t *testing.T) {
	h := newHarness(t, Join())
	h.tick()
	if got := h.state(); got != world.Success {
		t.Errorf("empty join = %v, want Success", got)
	}
}

func TestJoin_CancelledWaitsForChildren(t *testing.T) {
	var cancelled bool
	h := newHarness(t, Join(forever(&cancelled), succeedAfter(1)))

	h.w.SetState(h.root, world.Cancelled)

	// First tick propagates the cancel; the join stays Cancelled until
	// every child reaches a terminal state.
	h.tick()
	if got := h.state(); got != world.Cancelled {
		t.Fatalf("state = %v, want Cancelled while children wind down", got)
	}

	// Second tick: the forever leaf observes Cancelled and winds down.
	h.tick()
	if !cancelled {
		t.Error("cancelling the join should propagate to executing children")
	}
	if got := h.state(); got != world.Success {
		t.Errorf("state = %v, want Success after wind-down", got)
	}
}

func TestRace_FirstSuccessWins(t *testing.T) {
	var cancelled bool
	h := newHarness(t, Race(forever(&cancelled), succeedAfter(1)))

	h.tick()
	if got := h.state(); got != world.Success {
		t.Fatalf("state = %v, want Success", got)
	}
	if h.w.State(h.w.Children(h.root)[0]) != world.Cancelled {
		t.Error("losing sibling before the success should be cancelled")
	}
}

func TestRace_AllFail(t *testing.T) {
	h := newHarness(t, Race(failAfter(1), failAfter(2)))

	h.tick()
	if got := h.state(); got != world.Executing {
		t.Fatalf("state after tick 1 = %v, want Executing", got)
	}

	h.tick()
	if got := h.state(); got != world.Failure {
		t.Errorf("state after tick 2 = %v, want Failure", got)
	}
}

func TestRace_CancelledResolvesFromChildren(t *testing.T) {
	h := newHarness(t, Race(failAfter(1), failAfter(1)))

	h.w.SetState(h.root, world.Cancelled)
	h.tick()
	if got := h.state(); got != world.Failure {
		t.Errorf("cancelled race with failing children = %v, want Failure", got)
	}
}

func TestStep_RunsOneChildAtATime(t *testing.T) {
	h := newHarness(t, Step(succeedAfter(1), succeedAfter(1), succeedAfter(1)))

	for i := 0; i < 3; i++ {
		if n := len(h.w.Children(h.root)); n > 1 {
			t.Fatalf("step has %d live children, want at most 1", n)
		}
		h.tick()
	}

	if got := h.state(); got != world.Success {
		t.Errorf("state = %v, want Success", got)
	}
}

func TestStep_FailureHaltsChain(t *testing.T) {
	reached := false
	third := action.Func(func(state world.ActionState, _ world.Handle) world.ActionState {
		reached = true
		return world.Success
	})
	h := newHarness(t, Step(succeedAfter(1), failAfter(1), third))

	for i := 0; i < 6; i++ {
		h.tick()
	}

	if got := h.state(); got != world.Failure {
		t.Errorf("state = %v, want Failure", got)
	}
	if reached {
		t.Error("steps after a failure must never start")
	}
}

func TestStep_Empty(t *testing.T) {
	h := newHarness(t, Step())
	h.tick()
	if got := h.state(); got != world.Success {
		t.Errorf("empty step = %v, want Success", got)
	}
}

func TestStep_CancelPropagatesToActiveChild(t *testing.T) {
	var cancelled bool
	h := newHarness(t, Step(forever(&cancelled), succeedAfter(1)))

	h.w.SetState(h.root, world.Cancelled)

	h.tick() // propagate cancel to the active child
	h.tick() // child winds down; the step resolves from its result
	if !cancelled {
		t.Error("cancelling the step should propagate to its active child")
	}
	if got := h.state(); got != world.Success {
		t.Errorf("state = %v, want Success after wind-down", got)
	}
}

func TestMode_String(t *testing.T) {
	if ModeJoin.String() != "join" || ModeRace.String() != "race" || ModeStep.String() != "step" {
		t.Error("mode names changed")
	}
	if Mode(99).String() != "unknown" {
		t.Error("unknown mode should stringify as unknown")
	}
}

func TestSequence_ModeAccessor(t *testing.T) {
	h := newHarness(t, Race(succeedAfter(1)))
	if got := h.seq.Mode(); got != ModeRace {
		t.Errorf("Mode() = %v, want ModeRace", got)
	}
}
