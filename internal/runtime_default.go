//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// goroutine id → *Runtime. The cooperative single-writer model holds per
// goroutine: a UI goroutine owns its runtime for its whole life, and
// nothing is shared across goroutines.
var perGoroutine sync.Map

// GetRuntime returns the calling goroutine's runtime, creating it on first
// use.
func GetRuntime() *Runtime {
	gid := goid.Get()

	if r, ok := perGoroutine.Load(gid); ok {
		return r.(*Runtime)
	}

	r, _ := perGoroutine.LoadOrStore(gid, NewRuntime())
	return r.(*Runtime)
}
