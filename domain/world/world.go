package world

import (
	"fmt"

	"github.com/felixgeelhaar/thinker-go/domain/score"
)

// Kind classifies what a node carries.
type Kind uint8

const (
	// KindAgent nodes represent the agents actions and scorers act on
	// behalf of. They carry no score or action state.
	KindAgent Kind = iota

	// KindScorer nodes carry a Score and an actor back-reference.
	KindScorer

	// KindAction nodes carry an ActionState and an actor back-reference.
	KindAction
)

type node struct {
	generation uint32
	alive      bool
	reserved   bool

	kind     Kind
	parent   Handle
	children []Handle
	actor    Handle
	score    score.Score
	state    ActionState
	data     any
}

// World is an in-memory node arena. Slots are recycled with a generation
// bump so stale handles are detected rather than silently aliasing a new
// node. All typed accessors treat lookups through dead or mismatched handles
// as programming-contract violations and panic.
type World struct {
	nodes []node
	free  []uint32
}

// New creates an empty World.
func New() *World {
	// index 0 is reserved so the zero Handle stays invalid
	return &World{nodes: make([]node, 1)}
}

func (w *World) allocate(kind Kind, actor Handle) Handle {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		w.nodes = append(w.nodes, node{})
		idx = uint32(len(w.nodes) - 1)
	}
	n := &w.nodes[idx]
	n.generation++
	n.alive = true
	n.reserved = false
	n.kind = kind
	n.parent = Nil
	n.children = n.children[:0]
	n.actor = actor
	n.score = score.Score{}
	n.state = Executing
	n.data = nil
	return Handle{index: idx, generation: n.generation}
}

func (w *World) get(h Handle) *node {
	if h.IsNil() || int(h.index) >= len(w.nodes) {
		panic(fmt.Sprintf("world: lookup through invalid handle %v", h))
	}
	n := &w.nodes[h.index]
	if n.generation != h.generation || (!n.alive && !n.reserved) {
		panic(fmt.Sprintf("world: lookup through stale handle %v", h))
	}
	return n
}

// SpawnAgent creates an agent node.
func (w *World) SpawnAgent() Handle {
	return w.allocate(KindAgent, Nil)
}

// SpawnScorer creates a scorer node acting on behalf of actor, with a zero
// Score attached.
func (w *World) SpawnScorer(actor Handle) Handle {
	return w.allocate(KindScorer, actor)
}

// SpawnAction creates an action node acting on behalf of actor. Actions
// start in Executing.
func (w *World) SpawnAction(actor Handle) Handle {
	return w.allocate(KindAction, actor)
}

// Alive reports whether h refers to a live node. Unlike the typed
// accessors, Alive never panics: dangling checks are its whole purpose.
func (w *World) Alive(h Handle) bool {
	if h.IsNil() || int(h.index) >= len(w.nodes) {
		return false
	}
	n := &w.nodes[h.index]
	return n.alive && n.generation == h.generation
}

// Kind returns the node's kind.
func (w *World) Kind(h Handle) Kind {
	return w.get(h).kind
}

// Actor returns the agent handle the node acts on behalf of.
func (w *World) Actor(h Handle) Handle {
	return w.get(h).actor
}

// AddChild attaches child under parent, preserving insertion order.
func (w *World) AddChild(parent, child Handle) {
	c := w.get(child)
	if !c.parent.IsNil() {
		panic(fmt.Sprintf("world: %v is already attached to %v", child, c.parent))
	}
	p := w.get(parent)
	p.children = append(p.children, child)
	c.parent = parent
}

// Children returns the node's children in insertion order. The returned
// slice is owned by the World and must not be retained across mutations.
func (w *World) Children(h Handle) []Handle {
	return w.get(h).children
}

// Parent returns the node's parent, or Nil for roots.
func (w *World) Parent(h Handle) Handle {
	return w.get(h).parent
}

// Despawn destroys the node and its whole subtree, depth-first, and
// detaches the root from its parent. Despawning through a stale handle is a
// no-op: owners are allowed to despawn a subtree whose actor vanished first.
func (w *World) Despawn(h Handle) {
	if !w.Alive(h) && !w.reservedAt(h) {
		return
	}
	n := &w.nodes[h.index]
	if !n.parent.IsNil() && w.Alive(n.parent) {
		p := &w.nodes[n.parent.index]
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	w.despawnSubtree(h)
}

func (w *World) despawnSubtree(h Handle) {
	n := &w.nodes[h.index]
	for _, c := range n.children {
		if w.Alive(c) || w.reservedAt(c) {
			w.despawnSubtree(c)
		}
	}
	n.children = n.children[:0]
	n.parent = Nil
	n.actor = Nil
	n.alive = false
	n.reserved = false
	n.data = nil
	w.free = append(w.free, h.index)
}

func (w *World) reservedAt(h Handle) bool {
	if h.IsNil() || int(h.index) >= len(w.nodes) {
		return false
	}
	n := &w.nodes[h.index]
	return n.reserved && n.generation == h.generation
}

// Score returns the node's Score for reading and writing. Panics if the
// node is not a scorer: a composite reading a child score that was never
// created means the tree was built incorrectly.
func (w *World) Score(h Handle) *score.Score {
	n := w.get(h)
	if n.kind != KindScorer {
		panic(fmt.Sprintf("world: %v carries no score", h))
	}
	return &n.score
}

// ScoreValue returns the node's current score. It is the read-only accessor
// pickers arbitrate through.
func (w *World) ScoreValue(h Handle) float64 {
	return w.Score(h).Get()
}

// State returns the action node's lifecycle state.
func (w *World) State(h Handle) ActionState {
	n := w.get(h)
	if n.kind != KindAction {
		panic(fmt.Sprintf("world: %v carries no action state", h))
	}
	return n.state
}

// SetState writes the action node's lifecycle state.
func (w *World) SetState(h Handle, s ActionState) {
	n := w.get(h)
	if n.kind != KindAction {
		panic(fmt.Sprintf("world: %v carries no action state", h))
	}
	n.state = s
}

// CancelIfExecuting moves an Executing action to Cancelled and leaves every
// other state alone, so terminal states are never revisited.
func (w *World) CancelIfExecuting(h Handle) {
	n := w.get(h)
	if n.kind != KindAction {
		panic(fmt.Sprintf("world: %v carries no action state", h))
	}
	if n.state == Executing {
		n.state = Cancelled
	}
}

// SetData attaches the node's kind payload (the scorer or action
// implementation driving it).
func (w *World) SetData(h Handle, data any) {
	w.get(h).data = data
}

// Data returns the node's kind payload.
func (w *World) Data(h Handle) any {
	return w.get(h).data
}

// EachScorer calls fn for every live scorer node in spawn order.
func (w *World) EachScorer(fn func(h Handle, data any)) {
	w.each(KindScorer, fn)
}

// EachAction calls fn for every live action node in spawn order.
func (w *World) EachAction(fn func(h Handle, data any)) {
	w.each(KindAction, fn)
}

// EachAgent calls fn for every live agent node in spawn order.
func (w *World) EachAgent(fn func(h Handle, data any)) {
	w.each(KindAgent, fn)
}

func (w *World) each(kind Kind, fn func(h Handle, data any)) {
	for i := 1; i < len(w.nodes); i++ {
		n := &w.nodes[i]
		if n.alive && n.kind == kind {
			fn(Handle{index: uint32(i), generation: n.generation}, n.data)
		}
	}
}

// Len returns the number of live nodes.
func (w *World) Len() int {
	count := 0
	for i := 1; i < len(w.nodes); i++ {
		if w.nodes[i].alive {
			count++
		}
	}
	return count
}
