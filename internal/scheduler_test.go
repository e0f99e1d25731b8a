package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catchPanic runs fn and returns its panic value as an error, or nil.
func catchPanic(fn func()) (err error) {
	defer func() {
		if cause := recover(); cause != nil {
			err = cause.(error)
		}
	}()
	fn()
	return nil
}

func TestSchedulerRunsInOrder(t *testing.T) {
	s := NewScheduler()

	var order []int
	s.SetInHandler(true)
	s.Enqueue(func() { order = append(order, 1) })
	s.Enqueue(func() { order = append(order, 2) })
	s.Enqueue(func() { order = append(order, 3) })

	require.Equal(t, 3, s.Len())
	assert.Empty(t, order)

	s.SetInHandler(false)

	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerEnqueueOutsideHandlerFlushesImmediately(t *testing.T) {
	s := NewScheduler()

	ran := false
	s.Enqueue(func() { ran = true })

	assert.True(t, ran)
	assert.Equal(t, 1, s.Epoch())
}

func TestSchedulerTasksEnqueuedMidFlushRunInTheSameFlush(t *testing.T) {
	s := NewScheduler()

	var order []int
	epochInside := -1
	s.Enqueue(func() {
		order = append(order, 1)
		s.Enqueue(func() { order = append(order, 2) })
		epochInside = s.Epoch()
	})

	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, epochInside)
	assert.Equal(t, 1, s.Epoch())
}

func TestSchedulerFlushIsNotReentrant(t *testing.T) {
	s := NewScheduler()

	err := catchPanic(func() {
		s.Enqueue(func() { s.Flush() })
	})

	var inv *InvariantError
	require.ErrorAs(t, err, &inv)

	// the failed flush must not leave the scheduler stuck
	ran := false
	s.Enqueue(func() { ran = true })
	assert.True(t, ran)
}

func TestSchedulerDepthGuard(t *testing.T) {
	s := NewScheduler()
	s.maxDepth = 8

	var self Task
	runs := 0
	self = func() {
		runs++
		s.Enqueue(self)
	}

	err := catchPanic(func() { s.Enqueue(self) })

	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 8, runs)
}

func TestSchedulerNilTask(t *testing.T) {
	t.Run("strict panics", func(t *testing.T) {
		s := NewScheduler()

		err := catchPanic(func() { s.Enqueue(nil) })

		var pre *PreconditionError
		require.ErrorAs(t, err, &pre)
		assert.Equal(t, "enqueue", pre.Op)
	})

	t.Run("lenient drops", func(t *testing.T) {
		s := NewScheduler()
		s.strict = false

		s.Enqueue(nil)

		assert.Equal(t, 0, s.Len())
	})
}

func TestSchedulerBulkWindow(t *testing.T) {
	t.Run("enqueue is forbidden", func(t *testing.T) {
		s := NewScheduler()
		s.setBulk(true)

		err := catchPanic(func() { s.Enqueue(func() {}) })

		var pre *PreconditionError
		require.ErrorAs(t, err, &pre)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("sync progress permits enqueue and flushes", func(t *testing.T) {
		s := NewScheduler()
		s.setBulk(true)

		ran := false
		s.RunWithSyncProgress(func() {
			s.Enqueue(func() { ran = true })
			assert.False(t, ran)
		})

		assert.True(t, ran)
		assert.Equal(t, 0, s.Len())
	})
}

func TestSchedulerSyncProgressInsideRunningFlush(t *testing.T) {
	t.Run("scope tasks drain before scope exit", func(t *testing.T) {
		s := NewScheduler()

		ran := false
		pendingAtExit := -1
		s.Enqueue(func() {
			s.setBulk(true)
			defer s.setBulk(false)

			s.RunWithSyncProgress(func() {
				s.Enqueue(func() { ran = true })
			})
			pendingAtExit = s.Len()
		})

		assert.True(t, ran)
		assert.Equal(t, 0, pendingAtExit, "no task is left pending at scope exit")
	})

	t.Run("earlier queued tasks keep their place", func(t *testing.T) {
		s := NewScheduler()

		var order []string
		s.Enqueue(func() {
			s.Enqueue(func() { order = append(order, "queued") })
			s.RunWithSyncProgress(func() {
				s.Enqueue(func() { order = append(order, "sync") })
			})
			order = append(order, "scope-exit")
		})

		assert.Equal(t, []string{"sync", "scope-exit", "queued"}, order)
	})

	t.Run("drained tasks count against the depth bound", func(t *testing.T) {
		s := NewScheduler()
		s.maxDepth = 8

		var self Task
		self = func() { s.Enqueue(self) }

		err := catchPanic(func() {
			s.Enqueue(func() {
				s.RunWithSyncProgress(func() { s.Enqueue(self) })
			})
		})

		var inv *InvariantError
		require.ErrorAs(t, err, &inv)
	})
}

func TestSchedulerSyncProgressAdvancesEpochExactlyOnce(t *testing.T) {
	t.Run("with no tasks", func(t *testing.T) {
		s := NewScheduler()
		s.RunWithSyncProgress(func() {})
		assert.Equal(t, 1, s.Epoch())
	})

	t.Run("with tasks", func(t *testing.T) {
		s := NewScheduler()
		s.RunWithSyncProgress(func() {
			s.Enqueue(func() {})
		})
		assert.Equal(t, 1, s.Epoch())
	})
}

func TestSchedulerTaskPanicUnwindsRunningState(t *testing.T) {
	s := NewScheduler()

	err := catchPanic(func() {
		s.Enqueue(func() { panic(&InvariantError{Reason: "boom"}) })
	})
	require.Error(t, err)

	assert.False(t, s.running)
	ran := false
	s.Enqueue(func() { ran = true })
	assert.True(t, ran)
}
