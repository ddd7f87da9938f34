package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bageshwar/rankforge-sub000/internal/events"
	"github.com/bageshwar/rankforge-sub000/internal/parser/matchers"
)

// minAccolades is the completeness threshold: a game-over line preceded
// by fewer accolade lines than this is treated as a false or truncated
// game marker and discarded.
const minAccolades = 6

// ProcessedGate answers whether a game with this event type and
// timestamp was already durably ingested. It is a read-only point
// lookup consulted exactly once per game-over line.
type ProcessedGate interface {
	Exists(ctx context.Context, eventType string, ts time.Time) (bool, error)
}

// AccoladeSink receives the accolade batch of a game once its game-over
// line has been judged real. Called at most once per game.
type AccoladeSink interface {
	QueueAccolades(ctx context.Context, records []events.AccoladeRecord) error
}

// Result is the outcome of one ParseLine call: at most one event, plus
// the index the driver must resume scanning at. Next is not required to
// be index+1: a game over rewinds to the first round of the finished
// game, and the driver must honor that exactly.
type Result struct {
	Event events.Event // nil when the line yields nothing
	Next  int
}

// Machine is the replay state machine. CS2 servers emit the final score
// only after all rounds have played, so a game's rounds can only be
// attributed to it retrospectively: on game over the machine rewinds to
// the first round of the game and replays the in-round lines under the
// now-open match context. One Machine instance serves one log file;
// instances share no state and may run concurrently for different
// files.
type Machine struct {
	gate        ProcessedGate
	accolades   AccoladeSink
	accumulator AccoladeAccumulator
	inRound     []matchers.Matcher
	logger      *slog.Logger

	matchStarted          bool
	matchProcessingIndex  int // index of the game-over line being replayed, -1 when closed
	roundsSeenSinceRewind int
}

// NewMachine creates a replay state machine with the injected gate and
// accolade sink. A nil logger falls back to slog.Default.
func NewMachine(gate ProcessedGate, accolades AccoladeSink, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		gate:                 gate,
		accolades:            accolades,
		inRound:              matchers.InRound(),
		logger:               logger.With("component", "machine"),
		matchProcessingIndex: -1,
	}
}

// SetRoundEndLookahead overrides the bounded lookahead used to collect
// the round-end stat block. Values below one keep the default.
func (m *Machine) SetRoundEndLookahead(n int) {
	if n > 0 {
		m.inRound = matchers.InRoundWithLookahead(n)
	}
}

// ParseLine processes the line at idx within the full ordered line
// buffer. Data-shape problems (undecodable lines, unmatched grammars,
// incomplete games) never error; the only error sources are contract
// violations (nil buffer, out-of-range index) and gate/sink failures.
// The caller must resume at Result.Next exactly, including rewinds.
func (m *Machine) ParseLine(ctx context.Context, lines []string, idx int) (Result, error) {
	if lines == nil {
		return Result{}, fmt.Errorf("parse line: nil line buffer")
	}
	if idx < 0 || idx >= len(lines) {
		return Result{}, fmt.Errorf("parse line: index %d out of range [0,%d)", idx, len(lines))
	}

	advance := Result{Next: idx + 1}

	decoded, ok := DecodeLine(lines[idx])
	if !ok {
		return advance, nil
	}

	// Replay caught back up to the original game-over line: close the
	// match and emit the synthetic processed marker so the driver
	// resumes past the game instead of looping.
	if m.matchStarted && idx == m.matchProcessingIndex {
		m.logger.Debug("match replay complete",
			"index", idx,
			"rounds_replayed", m.roundsSeenSinceRewind)
		m.matchStarted = false
		m.matchProcessingIndex = -1
		m.roundsSeenSinceRewind = 0
		return Result{
			Event: events.GameProcessedEvent{Timestamp: decoded.Time},
			Next:  idx + 1,
		}, nil
	}

	if !m.matchStarted {
		if gameOver, ok := matchers.MatchGameOver(decoded.Time, decoded.Payload); ok {
			return m.handleGameOver(ctx, lines, idx, gameOver)
		}
		// In-round grammars only mean something once a game context has
		// been opened by a game-over rewind.
		return advance, nil
	}

	// While a match is open, a game-over line at any index other than
	// the caught-up one belongs to an earlier game swept into the
	// rewind window. It was handled when that game was open; reopening
	// it here would rewind again and never terminate. It falls through
	// the in-round matchers and advances like any consumed content.
	line := matchers.Line{
		Time:    decoded.Time,
		Payload: decoded.Payload,
		Ahead: func(offset int) (string, bool) {
			j := idx + offset
			if j < 0 || j >= len(lines) {
				return "", false
			}
			d, ok := DecodeLine(lines[j])
			if !ok {
				return "", false
			}
			return d.Payload, true
		},
	}
	for _, matcher := range m.inRound {
		ev, ok := matcher.Match(line)
		if !ok {
			continue
		}
		if _, isStart := ev.(events.RoundStartEvent); isStart {
			m.roundsSeenSinceRewind++
		}
		return Result{Event: ev, Next: idx + 1}, nil
	}

	// Unrecognized content, or accolade lines already consumed during
	// the backward collection pass.
	return advance, nil
}

// handleGameOver decides whether a game-over line opens a real game:
// locate the rewind target by counting the game's rounds backward,
// collect the accolade window, apply the completeness threshold and the
// dedup gate, then rewind.
func (m *Machine) handleGameOver(ctx context.Context, lines []string, idx int, gameOver events.GameOverEvent) (Result, error) {
	expectedRounds := gameOver.Team1Score + gameOver.Team2Score
	rewind, found := m.findRewindTarget(lines, idx, expectedRounds)
	if found < expectedRounds {
		m.logger.Warn("backward scan underrun, rewinding to start of log",
			"index", idx,
			"expected_rounds", expectedRounds,
			"found_rounds", found,
			"map", gameOver.Map)
	}

	records := m.accumulator.Collect(lines, rewind, idx)
	if len(records) < minAccolades {
		m.logger.Debug("discarding incomplete game",
			"index", idx,
			"map", gameOver.Map,
			"accolades", len(records))
		return Result{Next: idx + 1}, nil
	}

	processed, err := m.gate.Exists(ctx, gameOver.Kind(), gameOver.Timestamp)
	if err != nil {
		return Result{}, fmt.Errorf("dedup lookup: %w", err)
	}

	m.matchStarted = true
	m.matchProcessingIndex = idx
	m.roundsSeenSinceRewind = 0

	if processed {
		// At-most-once applies to the externally durable signals: the
		// rewind still happens so downstream can reprocess the in-round
		// lines idempotently, but neither the game-over event nor the
		// accolade batch is re-emitted.
		m.logger.Info("game already processed, replaying without emission",
			"timestamp", gameOver.Timestamp,
			"map", gameOver.Map)
		return Result{Next: rewind}, nil
	}

	if err := m.accolades.QueueAccolades(ctx, records); err != nil {
		m.matchStarted = false
		m.matchProcessingIndex = -1
		return Result{}, fmt.Errorf("queue accolades: %w", err)
	}

	return Result{Event: gameOver, Next: rewind}, nil
}

// findRewindTarget scans backward from idx counting round-start lines
// until expected are found. It returns the index of the earliest
// counted round start and how many were found. Running off the start of
// the log is not fatal: the target degrades to line 0.
func (m *Machine) findRewindTarget(lines []string, idx, expected int) (target, found int) {
	target = idx
	for i := idx - 1; i >= 0 && found < expected; i-- {
		decoded, ok := DecodeLine(lines[i])
		if !ok {
			continue
		}
		if matchers.IsRoundStart(decoded.Payload) {
			found++
			target = i
		}
	}
	if found < expected {
		target = 0
	}
	return target, found
}
