package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/loom-ui/loom/dom"
)

// Instance is one mounted component: the root of a live UI subtree.
// Instances do not form a retained tree; nested component nodes are
// evaluated inline during render, so parent/child relationships are rebuilt
// each pass rather than stored.
type Instance struct {
	id     string
	fn     ComponentFunc
	props  Props
	target *dom.Element

	mounted   bool
	unmounted bool

	// cancellation for async work tied to this instance; fresh per mount,
	// fired on unmount
	ctx    context.Context
	cancel context.CancelFunc

	cells  []*Cell
	cursor int

	pendingUpdate bool

	lastRenderToken    int
	currentRenderToken int
	lastReads          map[*Cell]struct{}
	pendingReads       map[*Cell]struct{}

	mountOps []func() func()
	cleanups []func()

	// provider chain shared by inline-evaluated components
	env map[any]any

	rerender Task
}

func (inst *Instance) ID() string              { return inst.id }
func (inst *Instance) Mounted() bool           { return inst.mounted }
func (inst *Instance) Target() *dom.Element    { return inst.target }
func (inst *Instance) Context() context.Context { return inst.ctx }

// renderResult is the expanded tree a render produced: fragments flattened,
// components evaluated, only intrinsic and text nodes left. Both commit
// paths consume it.
type renderResult struct {
	roots []*Node
}

// Mount creates an instance for the component and enqueues its first
// execution. The document's dispatch wrapper is installed so event handlers
// run inside the scheduler's deferral window.
func (r *Runtime) Mount(fn ComponentFunc, props Props, target *dom.Element) *Instance {
	inst := &Instance{
		id:           uuid.NewString(),
		fn:           fn,
		props:        props,
		target:       target,
		lastReads:    make(map[*Cell]struct{}),
		pendingReads: make(map[*Cell]struct{}),
		env:          make(map[any]any),
	}
	inst.ctx, inst.cancel = context.WithCancel(context.Background())
	inst.rerender = func() { r.renderInstance(inst) }

	r.instances[target.Handle()] = inst
	target.Document().SetDispatchWrapper(r.wrapHandler)

	r.scheduler.Enqueue(inst.rerender)
	return inst
}

// renderInstance is the scheduler task driving one render pass:
// execute, then commit through the fast lane or the normal pipeline.
func (r *Runtime) renderInstance(inst *Instance) {
	if inst.unmounted {
		return
	}
	inst.pendingUpdate = false

	res := r.execute(inst)

	if len(res.roots) == 1 && r.classifyReorderOnly(inst, res.roots[0]) {
		r.commitBulk(inst, res.roots[0])
		// subscription bookkeeping is not a document side effect; it still
		// runs so the reorder render stays the live subscription source
		inst.finalizeSubscriptions(inst.currentRenderToken)
		return
	}

	r.commit(inst, res)
}

// execute runs the render function with a fresh execution context and
// returns the produced tree, fully expanded. A panic is wrapped as a
// RenderError and re-raised; nothing has touched the document yet, so the
// rollback is only the discarded pending read set.
func (r *Runtime) execute(inst *Instance) renderResult {
	inst.currentRenderToken = r.nextRenderToken()
	inst.cursor = 0
	inst.mountOps = nil
	inst.pendingReads = make(map[*Cell]struct{})
	for _, cell := range inst.cells {
		cell.read = false
	}

	prev := r.rendering
	r.rendering = inst
	defer func() { r.rendering = prev }()

	var roots []*Node
	func() {
		defer func() {
			if cause := recover(); cause != nil {
				panic(&RenderError{ComponentID: inst.id, Cause: cause})
			}
		}()
		roots = r.expandNodes([]*Node{inst.fn(inst.props)})
	}()

	if r.strict {
		r.warnDeadState(inst)
	}

	return renderResult{roots: roots}
}

func (r *Runtime) warnDeadState(inst *Instance) {
	if inst.lastRenderToken != 0 && inst.cursor < len(inst.cells) {
		slog.Warn("loom: render observed fewer state cells than the first render",
			"component", inst.id, "observed", inst.cursor, "declared", len(inst.cells))
	}
	for _, cell := range inst.cells[:inst.cursor] {
		if !cell.read {
			slog.Warn("loom: state cell never read this render (dead state)",
				"component", inst.id, "index", cell.index)
		}
	}
}

// commit applies the rendered tree under the instance's target. On any
// panic during application the pre-commit child list is restored by
// reference, so attached listeners and element identity survive, and the
// failure re-raises as a CommitError. On success subscriptions are
// finalized and, on the very first mount only, queued mount effects run.
func (r *Runtime) commit(inst *Instance, res renderResult) {
	if r.strict && !r.scheduler.running {
		panic(&PreconditionError{Op: "commit", Reason: "document mutated outside a scheduler task"})
	}

	snapshot := inst.target.Children()

	func() {
		defer func() {
			if cause := recover(); cause != nil {
				inst.target.ReplaceChildren(snapshot)
				panic(&CommitError{ComponentID: inst.id, Cause: cause})
			}
		}()
		r.applyChildren(inst.target, res.roots)
	}()

	inst.finalizeSubscriptions(inst.currentRenderToken)

	first := !inst.mounted
	inst.mounted = true

	if first {
		ops := inst.mountOps
		inst.mountOps = nil
		for _, op := range ops {
			if teardown := op(); teardown != nil {
				inst.cleanups = append(inst.cleanups, teardown)
			}
		}
	}
}

// OnMount registers a mount-time side effect for the rendering component.
// The effect runs after the first successful commit; a returned function is
// chained into the instance's cleanup list. Forbidden during a bulk window.
func (r *Runtime) OnMount(fn func() func()) {
	if r.bulkActive() {
		err := &PreconditionError{Op: "onMount", Reason: "effect registration during a bulk commit"}
		if r.strict {
			panic(err)
		}
		slog.Warn("loom: dropped mount effect registered during bulk commit")
		return
	}

	inst := r.rendering
	if inst == nil {
		panic(&PreconditionError{Op: "onMount", Reason: "no component is rendering"})
	}

	inst.mountOps = append(inst.mountOps, fn)
}

// Cancellation returns the rendering component's cancellation signal.
func (r *Runtime) Cancellation() context.Context {
	inst := r.rendering
	if inst == nil {
		panic(&PreconditionError{Op: "cancellation", Reason: "no component is rendering"})
	}
	return inst.ctx
}

// SetEnv publishes a provider value for inline-evaluated children of the
// rendering component.
func (r *Runtime) SetEnv(key, value any) {
	inst := r.rendering
	if inst == nil {
		panic(&PreconditionError{Op: "provide", Reason: "no component is rendering"})
	}
	inst.env[key] = value
}

// Env reads a provider value published during this instance's renders.
func (r *Runtime) Env(key any) (any, bool) {
	inst := r.rendering
	if inst == nil {
		panic(&PreconditionError{Op: "env", Reason: "no component is rendering"})
	}
	v, ok := inst.env[key]
	return v, ok
}

// Unmount runs all registered cleanups (aggregating failures so one broken
// teardown does not stop the rest), removes the instance from every cell's
// reader map, fires the cancellation signal, and marks the instance
// unmounted so external registries can prune it deterministically.
func (r *Runtime) Unmount(inst *Instance) {
	if inst.unmounted {
		return
	}
	inst.unmounted = true
	inst.mounted = false

	var errs []error
	for _, fn := range inst.cleanups {
		func() {
			defer func() {
				if cause := recover(); cause != nil {
					errs = append(errs, fmt.Errorf("cleanup: %v", cause))
				}
			}()
			fn()
		}()
	}
	inst.cleanups = nil

	for cell := range inst.lastReads {
		delete(cell.readers, inst)
	}
	for _, cell := range inst.cells {
		delete(cell.readers, inst)
	}
	inst.lastReads = make(map[*Cell]struct{})
	inst.pendingReads = make(map[*Cell]struct{})

	inst.cancel()
	inst.rerender = nil
	delete(r.instances, inst.target.Handle())

	if len(errs) > 0 {
		err := &CleanupError{Errs: errs}
		if r.strict {
			panic(err)
		}
		slog.Error("loom: cleanup failures during unmount", "component", inst.id, "error", err)
	}
}
