/*
diag.go - Diagnostic sink

PURPOSE:
  The engine writes human-readable trace lines to a sink when tracing is
  enabled. Diagnostics are observational only: pricing logic never
  branches on whether a sink is active, and the exact text format is not
  part of any contract.
*/
package pricing

import (
	"fmt"
	"strings"
	"sync"
)

// DiagSink receives trace lines from the engine.
type DiagSink interface {
	Active() bool
	Printf(format string, args ...any)
}

// NopSink discards everything. The zero value is ready to use.
type NopSink struct{}

func (NopSink) Active() bool          { return false }
func (NopSink) Printf(string, ...any) {}

// BufferSink collects trace lines in memory. Safe for concurrent use.
type BufferSink struct {
	mu    sync.Mutex
	lines []string
}

func (b *BufferSink) Active() bool { return true }

func (b *BufferSink) Printf(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the collected trace.
func (b *BufferSink) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// String joins the trace for display.
func (b *BufferSink) String() string {
	return strings.Join(b.Lines(), "\n")
}
