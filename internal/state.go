package internal

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Cell is one unit of component state, identified by its owner and its
// positional index within the owner's first render. readers maps each
// subscribed instance to the render token its subscription was captured at;
// a write wakes an instance only if that token is still the instance's last
// committed render.
type Cell struct {
	value   any
	readers map[*Instance]int

	owner *Instance
	index int

	// set when the cell was read during the in-progress render
	read bool
}

// CreateState returns the cell for the next positional index of the
// rendering component, creating it on the first render. Callable only while
// a component is actively rendering. Creating a cell at an index the first
// render never produced is a hook-order violation and always fatal.
func (r *Runtime) CreateState(initial any) *Cell {
	inst := r.rendering
	if inst == nil {
		panic(&PreconditionError{Op: "createState", Reason: "no component is rendering"})
	}

	idx := inst.cursor
	inst.cursor++

	if idx < len(inst.cells) {
		cell := inst.cells[idx]
		if cell.owner != inst {
			panic(&InvariantError{Reason: "state cell owner changed"})
		}
		return cell
	}

	if inst.lastRenderToken != 0 {
		panic(&InvariantError{Reason: fmt.Sprintf(
			"state created at index %d but the first render produced %d cells (conditional createState)",
			idx, len(inst.cells))})
	}

	cell := &Cell{
		value:   initial,
		readers: make(map[*Instance]int),
		owner:   inst,
		index:   idx,
	}
	inst.cells = append(inst.cells, cell)
	return cell
}

// Read returns the current value, recording the read against the
// in-progress render when one is active. Outside a render it is a plain
// value read (the hydration boundary).
func (c *Cell) Read() any {
	r := GetRuntime()

	if inst := r.rendering; inst != nil {
		inst.pendingReads[c] = struct{}{}
		c.read = true
	}

	return c.value
}

// Peek returns the current value without tracking.
func (c *Cell) Peek() any { return c.value }

// Write replaces the cell's value and wakes current subscribers. Redundant
// writes are skipped. During a bulk commit the value is applied and visible
// to subsequent reads, but notification is deliberately skipped. Writing
// while any component is rendering is a scheduling precondition failure; a
// lenient runtime applies the value and defers the wake to the running
// flush, where the depth guard bounds the resulting re-render loop.
func (c *Cell) Write(v any) {
	r := GetRuntime()

	if r.rendering != nil {
		if r.strict {
			panic(&PreconditionError{Op: "write", Reason: "state written while a component is rendering"})
		}
		slog.Warn("loom: state written during render", "component", r.rendering.id)
	}

	if isEqual(c.value, v) {
		return
	}
	c.value = v

	if r.bulkActive() {
		// apply but don't notify: the bulk path is externally side-effect-silent
		return
	}

	c.notify(r)
}

// notify enqueues one re-render per subscriber whose last committed render
// actually read this cell. Multiple writes in a tick coalesce through the
// pendingUpdate flag.
func (c *Cell) notify(r *Runtime) {
	for inst, token := range c.readers {
		if inst.lastRenderToken != token || inst.unmounted || inst.pendingUpdate {
			continue
		}
		inst.pendingUpdate = true
		r.scheduler.Enqueue(inst.rerender)
	}
}

// isEqual gates redundant writes. Structural equality on purpose: replacing
// a slice with an equal slice should not schedule a render.
func isEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
