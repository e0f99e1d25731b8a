package internal

import (
	"github.com/loom-ui/loom/dom"
)

type bulkState int

const (
	bulkIdle bulkState = iota
	bulkCommitActive
)

// Runtime owns the scheduler, the ambient render context, and the side
// tables the reconciler keeps per live element (key maps, mounted
// instances). One runtime per goroutine; see GetRuntime.
type Runtime struct {
	scheduler *Scheduler

	// strict runtimes panic on scheduling preconditions; lenient runtimes
	// log and degrade. Invariant violations are fatal in both.
	strict bool

	// the instance whose render function is currently executing
	rendering *Instance

	// process-wide monotonically increasing render token source
	tokens int

	bulk bulkState

	instances map[dom.Handle]*Instance
	keyMaps   map[dom.Handle]map[string]*dom.Element
}

func NewRuntime() *Runtime {
	return &Runtime{
		scheduler: NewScheduler(),
		strict:    true,
		instances: make(map[dom.Handle]*Instance),
		keyMaps:   make(map[dom.Handle]map[string]*dom.Element),
	}
}

func (r *Runtime) Scheduler() *Scheduler { return r.scheduler }

func (r *Runtime) nextRenderToken() int {
	r.tokens++
	return r.tokens
}

func (r *Runtime) bulkActive() bool {
	return r.bulk == bulkCommitActive
}

// Settle flushes any pending work and returns the scheduler epoch. In the
// cooperative single-writer model there is nothing to wait on beyond this.
func (r *Runtime) Settle() int {
	if !r.scheduler.running && r.scheduler.Len() > 0 {
		r.scheduler.Flush()
	}
	return r.scheduler.epoch
}

func (r *Runtime) Epoch() int { return r.scheduler.epoch }

// wrapHandler brackets document event dispatch with the scheduler's
// handler-deferral window: state written by the handler is observed
// consistently inside it and flushed right after it returns.
func (r *Runtime) wrapHandler(fn func()) {
	r.scheduler.SetInHandler(true)
	defer r.scheduler.SetInHandler(false)
	fn()
}
