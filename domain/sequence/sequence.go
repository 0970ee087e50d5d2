// Package sequence provides the composite action combinators: Join
// (succeed iff all children succeed), Race (succeed iff any child
// succeeds), and Step (sequential chain with one live child at a time).
// A sequence node exposes the same four-state lifecycle as a leaf action
// and derives its own state from its children's states.
package sequence

import (
	"github.com/felixgeelhaar/thinker-go/domain/action"
	"github.com/felixgeelhaar/thinker-go/domain/world"
)

// Mode configures how a Sequence aggregates its children.
type Mode uint8

const (
	// ModeJoin succeeds when all children succeed and fails on the first
	// child failure.
	ModeJoin Mode = iota

	// ModeRace succeeds on the first child success and fails when all
	// children fail.
	ModeRace

	// ModeStep runs children one after another, advancing on success and
	// failing on the first failure.
	ModeStep
)

// String returns the mode name for logs.
func (m Mode) String() string {
	switch m {
	case ModeJoin:
		return "join"
	case ModeRace:
		return "race"
	case ModeStep:
		return "step"
	default:
		return "unknown"
	}
}

// Sequence is the node payload driving a composite action. It is mutated
// only by its own Tick during the sequence pass.
type Sequence struct {
	mode       Mode
	steps      []action.Template
	activeStep int
}

// Mode returns the sequence's aggregation mode.
func (s *Sequence) Mode() Mode {
	return s.mode
}

type template struct {
	mode  Mode
	steps []action.Template
}

// Join creates a composite action template succeeding iff all children
// succeed. Children run concurrently; a failure at index i cancels every
// non-terminal child before i.
func Join(children ...action.Template) action.Template {
	return template{mode: ModeJoin, steps: children}
}

// Race creates a composite action template succeeding iff any child
// succeeds. Children run concurrently; a success at index i cancels every
// non-terminal child before i.
func Race(children ...action.Template) action.Template {
	return template{mode: ModeRace, steps: children}
}

// Step creates a composite action template running children sequentially:
// each child starts only after the previous one succeeded and was torn
// down; the first failure fails the chain.
func Step(children ...action.Template) action.Template {
	return template{mode: ModeStep, steps: children}
}

// Spawn implements action.Template.
func (t template) Spawn(cmd *world.Commands, actor world.Handle) world.Handle {
	h := cmd.SpawnAction(actor)
	cmd.SetData(h, &Sequence{mode: t.mode, steps: t.steps})

	switch t.mode {
	case ModeJoin, ModeRace:
		for _, step := range t.steps {
			cmd.AddChild(h, step.Spawn(cmd, actor))
		}
	case ModeStep:
		if len(t.steps) > 0 {
			cmd.AddChild(h, t.steps[0].Spawn(cmd, actor))
		}
	}
	return h
}

// Tick advances the sequence one transition. Structural changes (step
// advancement, child teardown) go through the deferred sink and apply
// before the next pass.
func (s *Sequence) Tick(w *world.World, cmd *world.Commands, self world.Handle) {
	switch s.mode {
	case ModeJoin:
		s.tickJoin(w, self)
	case ModeRace:
		s.tickRace(w, self)
	case ModeStep:
		s.tickStep(w, cmd, self)
	}
}

func (s *Sequence) tickJoin(w *world.World, self world.Handle) {
	children := w.Children(self)

	switch w.State(self) {
	case world.Executing:
		allSuccess := true
		failedIndex := -1
		for i, child := range children {
			st := w.State(child)
			allSuccess = allSuccess && st.IsSuccess()
			switch {
			case st == world.Failure:
				failedIndex = i
			case st == world.Executing && failedIndex >= 0:
				// started before a failure was observed downstream
				w.SetState(child, world.Cancelled)
			}
		}
		if allSuccess {
			w.SetState(self, world.Success)
		} else if failedIndex >= 0 {
			for _, child := range children[:failedIndex] {
				w.CancelIfExecuting(child)
			}
			w.SetState(self, world.Failure)
		}

	case world.Cancelled:
		anyFailed := false
		allDone := true
		for _, child := range children {
			st := w.State(child)
			allDone = allDone && st.IsTerminal()
			switch st {
			case world.Failure:
				anyFailed = true
			case world.Executing:
				w.SetState(child, world.Cancelled)
			}
		}
		if allDone {
			if anyFailed {
				w.SetState(self, world.Failure)
			} else {
				w.SetState(self, world.Success)
			}
		}
	}
}

func (s *Sequence) tickRace(w *world.World, self world.Handle) {
	children := w.Children(self)

	switch w.State(self) {
	case world.Executing:
		allFailure := true
		succeededIndex := -1
		for i, child := range children {
			st := w.State(child)
			allFailure = allFailure && st.IsFailure()
			switch {
			case st == world.Success:
				succeededIndex = i
			case st == world.Executing && succeededIndex >= 0:
				w.SetState(child, world.Cancelled)
			}
		}
		if allFailure {
			w.SetState(self, world.Failure)
		} else if succeededIndex >= 0 {
			for _, child := range children[:succeededIndex] {
				w.CancelIfExecuting(child)
			}
			w.SetState(self, world.Success)
		}

	case world.Cancelled:
		anySucceeded := false
		allDone := true
		for _, child := range children {
			st := w.State(child)
			allDone = allDone && st.IsTerminal()
			switch st {
			case world.Success:
				anySucceeded = true
			case world.Executing:
				w.SetState(child, world.Cancelled)
			}
		}
		if allDone {
			if anySucceeded {
				w.SetState(self, world.Success)
			} else {
				w.SetState(self, world.Failure)
			}
		}
	}
}

func (s *Sequence) tickStep(w *world.World, cmd *world.Commands, self world.Handle) {
	if len(s.steps) == 0 {
		if w.State(self) == world.Executing || w.State(self) == world.Cancelled {
			w.SetState(self, world.Success)
		}
		return
	}
	children := w.Children(self)
	if len(children) == 0 {
		// the next step is still in the command buffer
		return
	}
	active := children[0]

	switch w.State(self) {
	case world.Executing:
		switch w.State(active) {
		case world.Executing, world.Cancelled:
			// running as it should, or winding down on its own schedule

		case world.Success:
			cmd.Despawn(active)
			if s.activeStep == len(s.steps)-1 {
				w.SetState(self, world.Success)
			} else {
				s.activeStep++
				cmd.AddChild(self, s.steps[s.activeStep].Spawn(cmd, w.Actor(self)))
			}

		case world.Failure:
			cmd.Despawn(active)
			w.SetState(self, world.Failure)
		}

	case world.Cancelled:
		switch w.State(active) {
		case world.Executing:
			w.SetState(active, world.Cancelled)
		case world.Success:
			w.SetState(self, world.Success)
		case world.Failure:
			w.SetState(self, world.Failure)
		}
	}
}
