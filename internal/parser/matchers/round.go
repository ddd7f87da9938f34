package matchers

import (
	"regexp"
	"strconv"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

const (
	roundStartTrigger = "Round_Start"
	roundEndTrigger   = "Round_End"

	// statBlockCap bounds the lookahead over the per-player stat block
	// that follows a Round_End line: ten players plus margin.
	statBlockCap = 16
)

// statLinePattern matches one line of the per-player stat block after a
// round end: a player token followed by a parenthesized stat clause.
// Only the numeric player id is collected.
var statLinePattern = regexp.MustCompile(`^"(?:.+?)<(\d+)><[^<>]*><[^<>]*>" \([a-z_]+ "`)

// RoundStartMatcher matches `World triggered "Round_Start"`.
type RoundStartMatcher struct{}

func (RoundStartMatcher) Match(line Line) (events.Event, bool) {
	if worldTrigger(line.Payload) != roundStartTrigger {
		return nil, false
	}
	return events.RoundStartEvent{Timestamp: line.Time}, true
}

// IsRoundStart reports whether a decoded payload is a round start line.
// The replay state machine uses it during backward scans without
// building a full event.
func IsRoundStart(payload string) bool {
	return worldTrigger(payload) == roundStartTrigger
}

// RoundEndMatcher matches `World triggered "Round_End"` and collects
// the player ids from the stat block that follows. The lookahead is
// bounded: it stops at the first line that is not a stat line, or after
// LookaheadCap lines (statBlockCap when zero). An empty id list is a
// valid result, not an error.
type RoundEndMatcher struct {
	LookaheadCap int
}

func (m RoundEndMatcher) Match(line Line) (events.Event, bool) {
	if worldTrigger(line.Payload) != roundEndTrigger {
		return nil, false
	}

	ev := events.RoundEndEvent{Timestamp: line.Time}
	if line.Ahead == nil {
		return ev, true
	}

	limit := m.LookaheadCap
	if limit <= 0 {
		limit = statBlockCap
	}
	for offset := 1; offset <= limit; offset++ {
		payload, ok := line.Ahead(offset)
		if !ok {
			break
		}
		m := statLinePattern.FindStringSubmatch(payload)
		if m == nil {
			break
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			break
		}
		ev.PlayerIDs = append(ev.PlayerIDs, id)
	}
	return ev, true
}
