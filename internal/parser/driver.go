package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// EventSink receives every emitted event exactly as the machine
// produces it. Implementations attach events to games/rounds and write
// them durably; they are expected to be idempotent per (game, round,
// event) because a hard replay can re-deliver in-round events.
type EventSink interface {
	OnEvent(ctx context.Context, ev events.Event) error
}

// ProgressFunc reports driver progress: current cursor position, total
// line count and games ingested so far.
type ProgressFunc func(index, total, games int)

// Stats summarizes one driver run. GamesProcessed counts games newly
// ingested this run: a dedup-suppressed replay closes with a processed
// marker but does not count.
type Stats struct {
	Calls          int // ParseLine invocations, replays included
	EventsEmitted  int
	GamesProcessed int
}

// Driver owns the scan loop over one log file. It calls ParseLine
// repeatedly and honors the returned resume index exactly, which is the
// crux of correct replay: after a game over the cursor moves backward.
type Driver struct {
	machine *Machine
	sink    EventSink
	logger  *slog.Logger
}

// NewDriver creates a driver around one machine and one event sink.
func NewDriver(machine *Machine, sink EventSink, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		machine: machine,
		sink:    sink,
		logger:  logger.With("component", "driver"),
	}
}

// progressEvery controls how often the progress callback fires, in
// ParseLine calls.
const progressEvery = 5000

// Run scans the full line buffer to completion. Cancellation is coarse:
// the context is checked between calls, never inside one.
func (d *Driver) Run(ctx context.Context, lines []string, progress ProgressFunc) (Stats, error) {
	var stats Stats

	idx := 0
	for idx < len(lines) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		res, err := d.machine.ParseLine(ctx, lines, idx)
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", idx, err)
		}
		stats.Calls++

		if res.Event != nil {
			if err := d.sink.OnEvent(ctx, res.Event); err != nil {
				return stats, fmt.Errorf("sink at line %d: %w", idx, err)
			}
			stats.EventsEmitted++
			if _, ok := res.Event.(events.GameOverEvent); ok {
				stats.GamesProcessed++
			}
		}

		idx = res.Next

		if progress != nil && stats.Calls%progressEvery == 0 {
			progress(idx, len(lines), stats.GamesProcessed)
		}
	}

	if progress != nil {
		progress(len(lines), len(lines), stats.GamesProcessed)
	}
	d.logger.Info("scan complete",
		"lines", len(lines),
		"calls", stats.Calls,
		"events", stats.EventsEmitted,
		"games", stats.GamesProcessed)
	return stats, nil
}

// ReadLines loads an entire log file into memory. The replay design
// requires the full ordered buffer to be resident: backward scans and
// rewinds index into already-seen lines, so streaming is not supported.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	// Envelope lines can be long; grow the scanner buffer well past the
	// default 64K token limit.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log lines: %w", err)
	}
	return lines, nil
}
