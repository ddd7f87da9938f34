package matchers

import (
	"regexp"
	"strconv"
	"time"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// gameOverPattern: `Game Over: competitive mg_active de_dust2 score 16:10 after 45 min`.
// The second token is the map-group/submode; it is matched but not
// modeled.
var gameOverPattern = regexp.MustCompile(
	`^Game Over: (\S+) (\S+) (\S+) score (\d+):(\d+) after (\d+) min\s*$`,
)

// MatchGameOver matches the authoritative end-of-game line. It is not
// part of the in-round priority list: the replay state machine checks
// it only while no match is open, so a game-over line swept into a
// rewind window is not reopened during replay.
func MatchGameOver(ts time.Time, payload string) (events.GameOverEvent, bool) {
	m := gameOverPattern.FindStringSubmatch(payload)
	if m == nil {
		return events.GameOverEvent{}, false
	}
	team1, _ := strconv.Atoi(m[4])
	team2, _ := strconv.Atoi(m[5])
	duration, _ := strconv.Atoi(m[6])
	return events.GameOverEvent{
		Timestamp:  ts,
		Mode:       m[1],
		Map:        m[3],
		Team1Score: team1,
		Team2Score: team2,
		Duration:   duration,
	}, true
}
