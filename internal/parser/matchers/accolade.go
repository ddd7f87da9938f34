package matchers

import (
	"regexp"
	"strconv"
	"time"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// accoladePattern: `ACCOLADE, FINAL: {3k},	Player Name<2>,	VALUE: 3.000000,	POS: 1,	SCORE: 20.000000`.
// Player names may contain spaces, punctuation and angle brackets; the
// greedy name group makes the last <digits> token the authoritative id.
var accoladePattern = regexp.MustCompile(
	`^ACCOLADE, FINAL: \{([^}]+)\},\s+(.*)<(\d+)>,\s+VALUE: ([0-9.]+),\s+POS: ([0-9]+),\s+SCORE: ([0-9.]+)\s*$`,
)

// accoladeNoIDPattern covers award lines without a numeric id token
// (bot awards). PlayerID stays nil for these.
var accoladeNoIDPattern = regexp.MustCompile(
	`^ACCOLADE, FINAL: \{([^}]+)\},\s+(.+?),\s+VALUE: ([0-9.]+),\s+POS: ([0-9]+),\s+SCORE: ([0-9.]+)\s*$`,
)

// MatchAccolade matches one end-of-game award line. Accolades are
// records queued per game, not events emitted through the sink, so the
// matcher stands outside the in-round priority list.
func MatchAccolade(ts time.Time, payload string) (events.AccoladeRecord, bool) {
	if m := accoladePattern.FindStringSubmatch(payload); m != nil {
		id, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			return events.AccoladeRecord{}, false
		}
		value, _ := strconv.ParseFloat(m[4], 64)
		pos, _ := strconv.Atoi(m[5])
		score, _ := strconv.ParseFloat(m[6], 64)
		return events.AccoladeRecord{
			Timestamp:  ts,
			Type:       m[1],
			PlayerName: m[2],
			PlayerID:   &id,
			Value:      value,
			Position:   pos,
			Score:      score,
		}, true
	}
	if m := accoladeNoIDPattern.FindStringSubmatch(payload); m != nil {
		value, _ := strconv.ParseFloat(m[3], 64)
		pos, _ := strconv.Atoi(m[4])
		score, _ := strconv.ParseFloat(m[5], 64)
		return events.AccoladeRecord{
			Timestamp:  ts,
			Type:       m[1],
			PlayerName: m[2],
			Value:      value,
			Position:   pos,
			Score:      score,
		}, true
	}
	return events.AccoladeRecord{}, false
}
