package world

// Commands collects structural mutations (spawn, attach, despawn) issued
// during a pass and applies them at Flush, before the next pass that
// depends on them. Spawned nodes get their handle immediately so templates
// can wire subtrees, but stay invisible to iteration until the flush;
// attribute writes on a freshly spawned node are allowed right away.
//
// A Commands must not be shared across goroutines.
type Commands struct {
	w   *World
	ops []func(*World)
}

// Commands creates a deferred-mutation sink for this World.
func (w *World) Commands() *Commands {
	return &Commands{w: w}
}

// World returns the World this sink flushes into.
func (c *Commands) World() *World {
	return c.w
}

func (c *Commands) reserve(kind Kind, actor Handle) Handle {
	h := c.w.allocate(kind, actor)
	n := &c.w.nodes[h.index]
	n.alive = false
	n.reserved = true
	c.ops = append(c.ops, func(w *World) {
		n := &w.nodes[h.index]
		if n.reserved && n.generation == h.generation {
			n.reserved = false
			n.alive = true
		}
	})
	return h
}

// SpawnScorer queues creation of a scorer node acting on behalf of actor.
func (c *Commands) SpawnScorer(actor Handle) Handle {
	return c.reserve(KindScorer, actor)
}

// SpawnAction queues creation of an action node acting on behalf of actor.
// The node starts in Executing once flushed.
func (c *Commands) SpawnAction(actor Handle) Handle {
	return c.reserve(KindAction, actor)
}

// AddChild queues attaching child under parent.
func (c *Commands) AddChild(parent, child Handle) {
	c.ops = append(c.ops, func(w *World) {
		if (w.Alive(parent) || w.reservedAt(parent)) && (w.Alive(child) || w.reservedAt(child)) {
			w.AddChild(parent, child)
		}
	})
}

// Despawn queues recursive destruction of the subtree rooted at h.
func (c *Commands) Despawn(h Handle) {
	c.ops = append(c.ops, func(w *World) {
		w.Despawn(h)
	})
}

// SetData attaches the node's kind payload immediately; payloads are part
// of construction, not of the mutation schedule.
func (c *Commands) SetData(h Handle, data any) {
	c.w.SetData(h, data)
}

// Flush applies every queued mutation in issue order and empties the
// buffer.
func (c *Commands) Flush() {
	ops := c.ops
	c.ops = nil
	for _, op := range ops {
		op(c.w)
	}
}

// Pending returns the number of queued mutations.
func (c *Commands) Pending() int {
	return len(c.ops)
}
