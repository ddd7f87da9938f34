package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

func TestDriverFullGame(t *testing.T) {
	lines := gameLines(26, 6, 16, 10)
	gate := newFakeGate()
	sink := &collectSink{}
	machine := NewMachine(gate, &fakeAccolades{}, nil)
	driver := NewDriver(machine, sink, nil)

	stats, err := driver.Run(context.Background(), lines, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One game over, 26 replayed round starts, one processed marker.
	if len(sink.events) != 28 {
		t.Fatalf("expected 28 events, got %d", len(sink.events))
	}
	if _, ok := sink.events[0].(events.GameOverEvent); !ok {
		t.Errorf("first event should be GameOverEvent, got %T", sink.events[0])
	}
	for i := 1; i < 27; i++ {
		if _, ok := sink.events[i].(events.RoundStartEvent); !ok {
			t.Errorf("event %d should be RoundStartEvent, got %T", i, sink.events[i])
		}
	}
	if _, ok := sink.events[27].(events.GameProcessedEvent); !ok {
		t.Errorf("last event should be GameProcessedEvent, got %T", sink.events[27])
	}

	if stats.GamesProcessed != 1 {
		t.Errorf("expected 1 game processed, got %d", stats.GamesProcessed)
	}
	if stats.EventsEmitted != 28 {
		t.Errorf("expected 28 events emitted, got %d", stats.EventsEmitted)
	}
}

func TestDriverIdempotentSecondRun(t *testing.T) {
	lines := gameLines(26, 6, 16, 10)
	gate := newFakeGate()
	ctx := context.Background()

	first := &collectSink{}
	driver := NewDriver(NewMachine(gate, &fakeAccolades{}, nil), first, nil)
	if _, err := driver.Run(ctx, lines, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Simulate the store having persisted the processed marker.
	for _, ev := range first.events {
		if g, ok := ev.(events.GameOverEvent); ok {
			gate.processed[gateKey("GAME_OVER", g.When())] = true
		}
	}

	second := &collectSink{}
	driver = NewDriver(NewMachine(gate, &fakeAccolades{}, nil), second, nil)
	stats, err := driver.Run(ctx, lines, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, ev := range second.events {
		if _, ok := ev.(events.GameOverEvent); ok {
			t.Fatalf("second run must not re-emit a game over")
		}
	}
	if stats.GamesProcessed != 0 {
		t.Errorf("suppressed replay must not count as an ingested game, got %d", stats.GamesProcessed)
	}
}

func TestDriverContextCancellation(t *testing.T) {
	lines := gameLines(26, 6, 16, 10)
	driver := NewDriver(NewMachine(newFakeGate(), &fakeAccolades{}, nil), &collectSink{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := driver.Run(ctx, lines, nil); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestReadLines(t *testing.T) {
	input := "one\ntwo\nthree\n"
	lines, err := ReadLines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 || lines[0] != "one" || lines[2] != "three" {
		t.Errorf("unexpected lines: %v", lines)
	}
}

func TestAccoladeCollect(t *testing.T) {
	ts := "2023-01-02T03:04:05Z"
	lines := []string{
		envLine(ts, "ACCOLADE, FINAL: {kills},\tAlice<3>,\tVALUE: 21.000000,\tPOS: 1,\tSCORE: 30.500000"),
		"not a log line at all",
		envLine(ts, `World triggered "Round_Start"`),
		envLine(ts, "ACCOLADE, FINAL: {hsp},\tBob<5>,\tVALUE: 0.750000,\tPOS: 2,\tSCORE: 12.000000"),
	}
	var acc AccoladeAccumulator
	records := acc.Collect(lines, 0, len(lines))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Type != "kills" || records[0].PlayerName != "Alice" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Position != 2 {
		t.Errorf("unexpected position: %d", records[1].Position)
	}

	// Out-of-range bounds clamp instead of panicking.
	if got := acc.Collect(lines, -5, 100); len(got) != 2 {
		t.Errorf("expected clamped collect to find 2 records, got %d", len(got))
	}
	if got := acc.Collect(nil, 0, 10); len(got) != 0 {
		t.Errorf("expected empty result for nil buffer, got %d", len(got))
	}
}
