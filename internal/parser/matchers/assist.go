package matchers

import (
	"regexp"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// assistPattern: `"A<...>" assisted killing "B<...>"` or
// `"A<...>" flash-assisted killing "B<...>"`. The assist grammar never
// carries coordinates.
var assistPattern = regexp.MustCompile(
	`^` + playerToken + ` (flash-)?assisted killing ` + playerToken + `$`,
)

// AssistMatcher matches regular and flash assists.
type AssistMatcher struct{}

func (AssistMatcher) Match(line Line) (events.Event, bool) {
	m := assistPattern.FindStringSubmatch(line.Payload)
	if m == nil {
		return nil, false
	}
	kind := events.AssistRegular
	if m[5] != "" {
		kind = events.AssistFlash
	}
	return events.AssistEvent{
		Timestamp: line.Time,
		Assister:  player(m[1], m[2], m[3], m[4]),
		Victim:    player(m[6], m[7], m[8], m[9]),
		Assist:    kind,
	}, true
}
