// Package debug provides conditional, component-tagged diagnostic logging.
// Output is off by default; it activates when the CODEMAP_DEBUG environment
// variable is "1" or "true", or via an explicit SetDebugOutput call, so normal operation never pays for
// formatting work that nobody reads.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	output io.Writer
)

// SetDebugOutput sets the writer debug lines are sent to. Pass nil to
// disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether debug logging is currently active.
func Enabled() bool {
	if os.Getenv("CODEMAP_DEBUG") == "1" || os.Getenv("CODEMAP_DEBUG") == "true" {
		return true
	}
	mu.Lock()
	defer mu.Unlock()
	return output != nil
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if output != nil {
		return output
	}
	if os.Getenv("CODEMAP_DEBUG") == "1" || os.Getenv("CODEMAP_DEBUG") == "true" {
		return os.Stderr
	}
	return nil
}

// Log writes a component-tagged debug line when debug output is active.
func Log(component, format string, args ...interface{}) {
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogIndexing logs an indexing-pipeline event (scanner, analyzer, index commit).
func LogIndexing(format string, args ...interface{}) { Log("INDEX", format, args...) }

// LogWatch logs a filesystem-watch event.
func LogWatch(format string, args ...interface{}) { Log("WATCH", format, args...) }

// LogLifecycle logs a settings/reconfiguration event.
func LogLifecycle(format string, args ...interface{}) { Log("LIFECYCLE", format, args...) }
