//go:build wasm

package internal

// wasm hosts run the whole program on one thread, so a single lazily built
// runtime serves every caller and no locking is needed.
var wasmRuntime *Runtime

func GetRuntime() *Runtime {
	if wasmRuntime == nil {
		wasmRuntime = NewRuntime()
	}
	return wasmRuntime
}
