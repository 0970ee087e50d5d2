package logging

import (
	"strconv"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/thinker-go/domain/thinker"
	"github.com/felixgeelhaar/thinker-go/domain/world"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for decision-engine logging.

// Tick adds the engine tick counter.
func Tick(n uint64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("tick", int64(n))
	}
}

// Node adds a node handle field.
func Node(h world.Handle) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("node", h.String())
	}
}

// Thinker adds the thinker node handle.
func Thinker(h world.Handle) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("thinker", h.String())
	}
}

// Actor adds the actor handle an action or scorer acts on behalf of.
func Actor(h world.Handle) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("actor", h.String())
	}
}

// Action adds the running action's node handle.
func Action(h world.Handle) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("action", h.String())
	}
}

// State adds an action lifecycle state.
func State(s world.ActionState) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("state", s.String())
	}
}

// FromState adds a from_state field for lifecycle transitions.
func FromState(s world.ActionState) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_state", s.String())
	}
}

// ToState adds a to_state field for lifecycle transitions.
func ToState(s world.ActionState) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("to_state", s.String())
	}
}

// Outcome adds a thinker reconciliation outcome.
func Outcome(o thinker.Outcome) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("outcome", o.String())
	}
}

// Score adds a score value field.
func Score(v float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("score", strconv.FormatFloat(v, 'f', 4, 64))
	}
}

// Pass adds the engine pass name.
func Pass(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("pass", name)
	}
}

// Reason adds a reason field.
func Reason(reason string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("reason", reason)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an int field with custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}
