package matchers

import (
	"regexp"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// bombTriggerPattern matches player-triggered bomb interactions, e.g.
// `"A<...>" triggered "Planted_The_Bomb"`. Some variants carry a
// trailing bombsite clause which is matched but not modeled.
var bombTriggerPattern = regexp.MustCompile(
	`^` + playerToken + ` triggered "(Planted_The_Bomb|Defused_The_Bomb|Begin_Bomb_Defuse_With_Kit|Begin_Bomb_Defuse_Without_Kit|Dropped_The_Bomb|Got_The_Bomb)"( at bombsite [A-Z])?$`,
)

// bombed is the World-triggered explosion notice; there is no acting
// player on that line.
const bombedTrigger = "SFUI_Notice_Target_Bombed"

// BombMatcher matches bomb interaction lines. Action carries the raw
// trigger token from the log.
type BombMatcher struct{}

func (BombMatcher) Match(line Line) (events.Event, bool) {
	if m := bombTriggerPattern.FindStringSubmatch(line.Payload); m != nil {
		return events.BombEvent{
			Timestamp: line.Time,
			Actor:     player(m[1], m[2], m[3], m[4]),
			Action:    m[5],
		}, true
	}
	if worldTrigger(line.Payload) == bombedTrigger {
		return events.BombEvent{
			Timestamp: line.Time,
			Actor:     events.Player{Name: "World"},
			Action:    bombedTrigger,
		}, true
	}
	return nil, false
}
