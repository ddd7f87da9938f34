package matchers

import (
	"regexp"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// killPattern: `"A<1><[U:1:5]><CT>" [x y z] killed "B<2><BOT><TERRORIST>" [x y z] with "ak47" (headshot)`.
// Both coordinate triples are part of the grammar: a kill line without
// them is not a kill event.
var killPattern = regexp.MustCompile(
	`^` + playerToken + ` ` + coordToken + ` killed ` + playerToken + ` ` + coordToken + ` with "([^"]+)"( \(headshot\))?$`,
)

// KillMatcher matches enemy and team kill lines alike; attribution of
// team kills is a downstream concern.
type KillMatcher struct{}

func (KillMatcher) Match(line Line) (events.Event, bool) {
	m := killPattern.FindStringSubmatch(line.Payload)
	if m == nil {
		return nil, false
	}
	return events.KillEvent{
		Timestamp:   line.Time,
		Attacker:    player(m[1], m[2], m[3], m[4]),
		AttackerPos: position(m[5], m[6], m[7]),
		Victim:      player(m[8], m[9], m[10], m[11]),
		VictimPos:   position(m[12], m[13], m[14]),
		Weapon:      m[15],
		Headshot:    m[16] != "",
	}, true
}
