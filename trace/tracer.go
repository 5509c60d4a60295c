package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Tracer provides diagnostic tracing of type construction and operator
// resolution for debugging
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// Global tracer instance
var globalTracer *Tracer

// Init initializes the global tracer
func Init(enabled bool, filters []string, writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	globalTracer = &Tracer{
		enabled: enabled,
		filters: filters,
		writer:  writer,
	}
}

// IsEnabled returns whether tracing is enabled
func IsEnabled() bool {
	if globalTracer == nil {
		return false
	}
	return globalTracer.enabled
}

// matchesFilter checks if a name matches any of the filter patterns
func (t *Tracer) matchesFilter(name string) bool {
	if len(t.filters) == 0 {
		return true // No filters = trace everything
	}

	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// Construct logs the start of construction of a partial type
func Construct(name string, depth int) {
	t := globalTracer
	if t == nil || !t.enabled || !t.matchesFilter(name) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.writer, "[TRACE] CONSTRUCT %s%s\n", indent(depth), name)
}

// Finalize logs completion of a type's member table
func Finalize(name string, kind string) {
	t := globalTracer
	if t == nil || !t.enabled || !t.matchesFilter(name) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.writer, "[TRACE] FINALIZE %s (%s)\n", name, kind)
}

// Publish logs a class-to-representation binding becoming visible
func Publish(class string, rep string) {
	t := globalTracer
	if t == nil || !t.enabled || !t.matchesFilter(class) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.writer, "[TRACE] PUBLISH %s -> %s\n", class, rep)
}

// Resolve logs the outcome of operator resolution at a call site
func Resolve(op string, left string, right string, chosen string) {
	t := globalTracer
	if t == nil || !t.enabled || !t.matchesFilter(op) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if right == "" {
		fmt.Fprintf(t.writer, "[TRACE] RESOLVE %s(%s) => %s\n", op, left, chosen)
		return
	}
	fmt.Fprintf(t.writer, "[TRACE] RESOLVE %s(%s, %s) => %s\n", op, left, right, chosen)
}

// indent returns a ruler prefix for nested construction frames
func indent(depth int) string {
	const ruler = ". . . . . . . . . . . . "
	n := depth * 2
	if n > len(ruler) {
		n = len(ruler)
	}
	return ruler[:n]
}
