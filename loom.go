// Package loom is a fine-grained reactive UI runtime. Components are plain
// functions returning an element description tree; a per-goroutine
// scheduler serializes state changes into discrete render passes; a keyed
// reconciler patches the live document tree to match, trying cheap paths
// before falling back to general diffing.
package loom

import (
	"context"

	"github.com/loom-ui/loom/dom"
	"github.com/loom-ui/loom/internal"
)

type (
	Props     = internal.Props
	Node      = internal.Node
	Component = internal.ComponentFunc
	Option    = internal.Option
)

var (
	WithLenient       = internal.WithLenient
	WithStrict        = internal.WithStrict
	WithMaxFlushDepth = internal.WithMaxFlushDepth
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// Configure applies options to the calling goroutine's runtime. Apply them
// before mounting anything.
func Configure(opts ...Option) {
	internal.GetRuntime().Configure(opts...)
}

// Root is a mounted component tree.
type Root struct {
	runtime *internal.Runtime
	inst    *internal.Instance
}

// Mount enqueues the component's first execution under target and returns
// a handle for unmounting.
func Mount(fn Component, props Props, target *dom.Element) *Root {
	r := internal.GetRuntime()
	return &Root{runtime: r, inst: r.Mount(fn, props, target)}
}

// Unmount runs the tree's cleanup functions, removes its subscriptions,
// and fires its cancellation signal.
func (t *Root) Unmount() {
	t.runtime.Unmount(t.inst)
}

type State[T any] struct {
	cell *internal.Cell
}

// NewState creates (or on re-render, retrieves) the rendering component's
// state cell for the next positional index. Callable only during a render.
func NewState[T any](initial T) *State[T] {
	return &State[T]{internal.GetRuntime().CreateState(initial)}
}

// Read the current value, subscribing the rendering component to changes.
func (s *State[T]) Read() T {
	return as[T](s.cell.Read())
}

// Peek reads the current value without subscribing. This is the hydration
// boundary: external code snapshots state through Peek and restores it
// through Write outside of a render.
func (s *State[T]) Peek() T {
	return as[T](s.cell.Peek())
}

// Write a new value, waking components whose last committed render read
// this cell. Redundant writes are skipped.
func (s *State[T]) Write(v T) {
	s.cell.Write(v)
}

// Update computes the next value from the previous one.
func (s *State[T]) Update(fn func(T) T) {
	s.cell.Write(fn(as[T](s.cell.Peek())))
}

// OnMount registers a side effect to run after the component's first
// successful commit. A returned function is registered as a cleanup, run on
// unmount.
func OnMount(fn func() func()) {
	internal.GetRuntime().OnMount(fn)
}

// Cancellation returns the rendering component's cancellation signal. It is
// cancelled on unmount and is how in-flight async work tied to the
// component learns to stop.
func Cancellation() context.Context {
	return internal.GetRuntime().Cancellation()
}

// Provide publishes a value to components evaluated inline during this
// tree's renders.
func Provide(key, value any) {
	internal.GetRuntime().SetEnv(key, value)
}

// Use reads a value published with Provide.
func Use[T any](key any) (T, bool) {
	v, ok := internal.GetRuntime().Env(key)
	return as[T](v), ok
}

// Settle flushes pending work and returns the scheduler epoch.
func Settle() int {
	return internal.GetRuntime().Settle()
}

// Epoch returns the scheduler epoch without flushing.
func Epoch() int {
	return internal.GetRuntime().Epoch()
}
