// Package abi defines the host/plugin ABI contract shared by the RSU
// supervisor and every workload plugin it loads as a Go shared object.
//
// The contract is intentionally the entire coupling surface between host
// and plugin: a plugin exports exactly one symbol, Run,
// matching RunFunc, and communicates with the host exclusively through the
// two Flags it is handed.
package abi

import "sync"

// RunSymbol is the exported symbol name every plugin .so must provide.
const RunSymbol = "Run"

// Exit codes returned by a plugin's Run function.
const (
	ExitClean = int32(0)
)

// Flag is a shared mutable boolean guarded by its own lightweight mutex.
// Each Flag is locked only across a single read or write, never held
// across a blocking call.
type Flag struct {
	mu  sync.Mutex
	val bool
}

// NewFlag creates a Flag with the given initial value.
func NewFlag(initial bool) *Flag {
	return &Flag{val: initial}
}

// Get reads the current value.
func (f *Flag) Get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val
}

// Set writes a new value.
func (f *Flag) Set(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.val = v
}

// RunFunc is the signature a plugin's exported Run symbol must satisfy.
//
// running is true from the moment the plugin starts and is flipped to
// false, monotonically, by the host when it wants the plugin to stop. The
// plugin must poll it at least once per second and return once it observes
// false.
//
// errorFlag starts false. The plugin raises it before returning from any
// background task that hit an unrecoverable failure; the host reads it on
// every check_plugins cycle but never writes it while the plugin runs.
//
// Run returns 0 on clean shutdown, negative on failure-to-start.
type RunFunc func(running *Flag, errorFlag *Flag) int32
