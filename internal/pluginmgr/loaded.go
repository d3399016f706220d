package pluginmgr

import (
	"fmt"
	"plugin"

	"github.com/autocore-ai/RSU/internal/abi"
)

// loadedPlugin is the runtime counterpart of a Descriptor. It exists iff
// the corresponding descriptor is active and start succeeded. Its library
// handle is never closed: Go's plugin package offers no unload primitive,
// so the handle simply outlives the process once opened.
type loadedPlugin struct {
	handle  *plugin.Plugin
	running *abi.Flag
	errFlag *abi.Flag
	done    chan int32
}

// startLoadedPlugin opens the shared library at path, resolves its Run
// symbol, and spawns the worker goroutine that owns the call into it.
func startLoadedPlugin(path string) (*loadedPlugin, error) {
	handle, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin library %s: %w", path, err)
	}

	sym, err := handle.Lookup(abi.RunSymbol)
	if err != nil {
		return nil, fmt.Errorf("plugin %s missing exported %s symbol: %w", path, abi.RunSymbol, err)
	}

	// Lookup returns the symbol boxed under its literal (unnamed) function
	// type, not the abi.RunFunc name it happens to share an underlying type
	// with, so the assertion must target that literal type.
	runFn, ok := sym.(func(*abi.Flag, *abi.Flag) int32)
	if !ok {
		return nil, fmt.Errorf("plugin %s: %s has the wrong signature, expected func(*abi.Flag, *abi.Flag) int32", path, abi.RunSymbol)
	}
	var run abi.RunFunc = runFn

	lp := &loadedPlugin{
		handle:  handle,
		running: abi.NewFlag(true),
		errFlag: abi.NewFlag(false),
		done:    make(chan int32, 1),
	}

	go func() {
		lp.done <- run(lp.running, lp.errFlag)
	}()

	return lp, nil
}

// stop requests a clean shutdown and joins the worker. It blocks until the
// plugin observes the running flag and returns. Cancellation here is
// cooperative; there is no forced termination.
func (lp *loadedPlugin) stop() int32 {
	lp.running.Set(false)
	return <-lp.done
}

// errored reports whether the plugin raised its error flag.
func (lp *loadedPlugin) errored() bool {
	return lp.errFlag.Get()
}
