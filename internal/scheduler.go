package internal

import (
	"fmt"
	"log/slog"
	"slices"
)

type Task func()

// DefaultMaxFlushDepth bounds how many tasks a single flush may run. A
// render that keeps writing state it reads enqueues itself forever; the
// bound turns that hang into a failure.
const DefaultMaxFlushDepth = 256

// Scheduler serializes every state mutation and tree commit through a single
// FIFO queue. Tasks run strictly in enqueue order; there are no priority
// levels and no task-level cancellation.
type Scheduler struct {
	tasks []Task

	running    bool
	depth      int
	maxDepth   int
	inHandler  bool
	syncDepth  int
	bulkActive bool

	// incremented once per completed flush (and once per sync-progress
	// scope); awaiting callers compare epochs to detect settled state
	epoch int

	strict bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		maxDepth: DefaultMaxFlushDepth,
		strict:   true,
	}
}

// Enqueue appends a task to the queue and flushes unless a flush is already
// running, a handler window is open, or a sync-progress scope will flush
// explicitly. Enqueueing during a bulk commit is forbidden outside a
// sync-progress scope.
func (s *Scheduler) Enqueue(task Task) {
	if task == nil {
		s.fail("enqueue", "task is not callable")
		return
	}
	if s.bulkActive && s.syncDepth == 0 {
		s.fail("enqueue", "scheduling is forbidden during a bulk commit")
		return
	}

	s.tasks = append(s.tasks, task)

	if !s.running && !s.inHandler && s.syncDepth == 0 {
		s.Flush()
	}
}

// Flush pops and executes tasks one at a time to completion. It is not
// re-entrant: calling it while already running is a programming error. A
// task panic propagates after the running state is unwound, so a failed
// task never leaves the scheduler stuck.
func (s *Scheduler) Flush() {
	if s.running {
		panic(&InvariantError{Reason: "flush called while already running"})
	}

	s.running = true
	s.depth = 0
	defer func() {
		s.running = false
		s.depth = 0
	}()

	for len(s.tasks) > 0 {
		s.depth++
		if s.depth > s.maxDepth {
			panic(&InvariantError{Reason: fmt.Sprintf(
				"flush exceeded %d tasks; a render is likely writing state it reads", s.maxDepth)})
		}

		task := s.tasks[0]
		s.tasks[0] = nil // release for gc
		s.tasks = s.tasks[1:]

		task()
	}

	s.epoch++
}

// SetInHandler opens or closes the handler-deferral window. While open,
// enqueued work waits so synchronous reads inside the handler observe
// consistent state; closing the window flushes whatever queued up.
func (s *Scheduler) SetInHandler(in bool) {
	s.inHandler = in

	if !in && len(s.tasks) > 0 && !s.running {
		s.Flush()
	}
}

func (s *Scheduler) InHandler() bool { return s.inHandler }

// RunWithSyncProgress is the privileged escape hatch used by the bulk-commit
// fast lane. It permits enqueue during an otherwise-forbidden bulk window,
// runs fn, then synchronously runs whatever the scope enqueued before
// returning, so no task is left pending at scope exit. Inside a running
// flush the scope's tasks are drained inline under the flush's depth bound;
// tasks queued before the scope keep their place in the outer flush. The
// epoch advances exactly once even if zero tasks ran. Re-entrant safe.
func (s *Scheduler) RunWithSyncProgress(fn func()) {
	before := s.epoch
	baseline := len(s.tasks)

	s.syncDepth++
	defer func() { s.syncDepth-- }()

	fn()

	if s.running {
		for len(s.tasks) > baseline {
			s.depth++
			if s.depth > s.maxDepth {
				panic(&InvariantError{Reason: fmt.Sprintf(
					"flush exceeded %d tasks; a render is likely writing state it reads", s.maxDepth)})
			}

			task := s.tasks[baseline]
			s.tasks = slices.Delete(s.tasks, baseline, baseline+1)

			task()
		}
	} else if len(s.tasks) > 0 {
		s.Flush()
	}

	if s.epoch == before {
		s.epoch++
	}
}

func (s *Scheduler) setBulk(active bool) { s.bulkActive = active }

func (s *Scheduler) Len() int { return len(s.tasks) }

func (s *Scheduler) Epoch() int { return s.epoch }

// Clear drops all pending tasks. Used on teardown.
func (s *Scheduler) Clear() {
	s.tasks = nil
}

func (s *Scheduler) fail(op, reason string) {
	err := &PreconditionError{Op: op, Reason: reason}
	if s.strict {
		panic(err)
	}
	slog.Warn("loom: dropped illegal scheduling operation", "op", op, "reason", reason)
}
