// Package world provides the node storage the decision engine runs against:
// a generational handle arena with parent/child hierarchy, typed per-node
// attributes (score, action state, actor back-reference, kind payload), and
// a deferred command buffer applied between engine passes.
package world

import "fmt"

// Handle identifies a node in a World. Handles are generational: once a node
// is despawned its handle goes stale and any typed access through it is a
// contract violation. The zero Handle is Nil and never refers to a node.
type Handle struct {
	index      uint32
	generation uint32
}

// Nil is the invalid Handle.
var Nil = Handle{}

// IsNil returns true if the handle is the zero Handle.
func (h Handle) IsNil() bool {
	return h == Nil
}

// String returns a compact representation for logs.
func (h Handle) String() string {
	if h.IsNil() {
		return "node(nil)"
	}
	return fmt.Sprintf("node(%dv%d)", h.index, h.generation)
}
