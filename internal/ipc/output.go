// Package ipc emits NDJSON (newline-delimited JSON) status messages on
// stdout for a supervising process. Application logs go through slog;
// this channel is only the machine-readable progress/error stream.
package ipc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Output handles NDJSON output to stdout. All methods are thread-safe.
type Output struct {
	mu sync.Mutex
	w  io.Writer
}

// NewOutput creates a new NDJSON output handler writing to stdout.
func NewOutput() *Output {
	return &Output{w: os.Stdout}
}

// NewOutputTo creates an NDJSON output handler writing to w.
func NewOutputTo(w io.Writer) *Output {
	return &Output{w: w}
}

// Progress sends a progress update: cursor position within the line
// buffer, total lines and games completed so far.
func (o *Output) Progress(line, total, games int) {
	pct := 0.0
	if total > 0 {
		pct = float64(line) / float64(total) * 100.0
	}
	o.writeJSON(map[string]interface{}{
		"type":  "progress",
		"line":  line,
		"total": total,
		"games": games,
		"pct":   pct,
	})
}

// Log sends a log message.
func (o *Output) Log(level, msg string) {
	o.writeJSON(map[string]interface{}{
		"type":  "log",
		"level": level,
		"msg":   msg,
	})
}

// Error sends an error message.
func (o *Output) Error(msg string) {
	o.writeJSON(map[string]interface{}{
		"type": "error",
		"msg":  msg,
	})
}

// Done sends the final summary of a run.
func (o *Output) Done(lines, events, games int) {
	o.writeJSON(map[string]interface{}{
		"type":   "done",
		"lines":  lines,
		"events": events,
		"games":  games,
	})
}

// writeJSON writes a JSON object to the output stream followed by a
// newline.
func (o *Output) writeJSON(obj map[string]interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	data, err := json.Marshal(obj)
	if err != nil {
		// Fallback to stderr if JSON marshaling fails
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintf(o.w, "%s\n", data)
}
