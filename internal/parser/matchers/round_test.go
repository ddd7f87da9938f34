package matchers

import (
	"testing"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

func TestRoundStartMatch(t *testing.T) {
	ev, ok := RoundStartMatcher{}.Match(Line{Time: testTime, Payload: `World triggered "Round_Start"`})
	if !ok {
		t.Fatalf("expected round start to match")
	}
	if _, ok := ev.(events.RoundStartEvent); !ok {
		t.Fatalf("expected RoundStartEvent, got %T", ev)
	}

	if !IsRoundStart(`World triggered "Round_Start"`) {
		t.Errorf("IsRoundStart should report true")
	}
	if IsRoundStart(`World triggered "Round_End"`) {
		t.Errorf("IsRoundStart should report false for round end")
	}
}

func TestRoundEndStatBlock(t *testing.T) {
	block := []string{
		`"Alice<12><[U:1:555]><CT>" (score "31")`,
		`"Bob<7><[U:1:556]><TERRORIST>" (score "24")`,
		`"Bot Carl<4><BOT><TERRORIST>" (score "2")`,
		`World triggered "Round_Start"`, // terminates the block
		`"Zoe<9><[U:1:557]><CT>" (score "11")`,
	}
	line := Line{
		Time:    testTime,
		Payload: `World triggered "Round_End"`,
		Ahead: func(offset int) (string, bool) {
			if offset < 1 || offset > len(block) {
				return "", false
			}
			return block[offset-1], true
		},
	}

	ev, ok := RoundEndMatcher{}.Match(line)
	if !ok {
		t.Fatalf("expected round end to match")
	}
	end := ev.(events.RoundEndEvent)

	want := []int{12, 7, 4}
	if len(end.PlayerIDs) != len(want) {
		t.Fatalf("expected %d player ids, got %d (%v)", len(want), len(end.PlayerIDs), end.PlayerIDs)
	}
	for i, id := range want {
		if end.PlayerIDs[i] != id {
			t.Errorf("player id %d: expected %d, got %d", i, id, end.PlayerIDs[i])
		}
	}
}

func TestRoundEndEmptyBlock(t *testing.T) {
	// No stat block after the round end line is a valid state.
	line := Line{
		Time:    testTime,
		Payload: `World triggered "Round_End"`,
		Ahead: func(offset int) (string, bool) {
			return "", false
		},
	}

	ev, ok := RoundEndMatcher{}.Match(line)
	if !ok {
		t.Fatalf("expected round end to match")
	}
	if len(ev.(events.RoundEndEvent).PlayerIDs) != 0 {
		t.Errorf("expected no player ids")
	}
}

func TestRoundEndLookaheadCap(t *testing.T) {
	line := Line{
		Time:    testTime,
		Payload: `World triggered "Round_End"`,
		Ahead: func(offset int) (string, bool) {
			// Endless stat lines; the cap must stop the scan.
			return `"P<1><[U:1:1]><CT>" (score "0")`, true
		},
	}

	ev, ok := RoundEndMatcher{}.Match(line)
	if !ok {
		t.Fatalf("expected round end to match")
	}
	if got := len(ev.(events.RoundEndEvent).PlayerIDs); got != statBlockCap {
		t.Errorf("expected lookahead capped at %d, got %d", statBlockCap, got)
	}

	// A configured bound replaces the default.
	ev, ok = RoundEndMatcher{LookaheadCap: 3}.Match(line)
	if !ok {
		t.Fatalf("expected round end to match")
	}
	if got := len(ev.(events.RoundEndEvent).PlayerIDs); got != 3 {
		t.Errorf("expected lookahead capped at 3, got %d", got)
	}
}

func TestInRoundWithLookahead(t *testing.T) {
	for _, m := range InRoundWithLookahead(5) {
		if end, ok := m.(RoundEndMatcher); ok {
			if end.LookaheadCap != 5 {
				t.Errorf("expected lookahead 5, got %d", end.LookaheadCap)
			}
			return
		}
	}
	t.Fatalf("round-end matcher missing from in-round list")
}
