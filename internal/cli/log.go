// Package cli implements the vlanimate command-line interface.
//
// The commands compile animated chart specs, inspect their elaborated form
// and compiled dataflow graphs, preview and play the animation clock in the
// terminal, serve the compiler over HTTP and manage the result cache. The
// CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - compile: Compile an animated chart to a dataflow graph
//   - elaborate: Print a chart with its animation defaults filled in
//   - check: Report references in a compiled graph that name nothing
//   - graph: Draw the signal and data dependencies of a graph (DOT or SVG)
//   - preview: Tabulate each scope's keyframes and timing
//   - play: Play a scope's clock in the terminal
//   - serve: Run the HTTP API
//   - cache: Manage the compile and data cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes pipeline stage timings and cache hits.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Loaded 3 scopes (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
