// Package matchers holds one independent pattern matcher per log-line
// grammar. Matching is purely syntactic: a matcher either produces a
// typed event or declares no match, it never errors. The replay state
// machine tries matchers in a fixed priority order because some
// grammars are textual subsets of others (kill before attack before the
// generic trigger patterns).
package matchers

import (
	"regexp"
	"strconv"
	"time"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// Lookahead returns the decoded payload of the raw line `offset` lines
// after the one being matched, or false when the line does not exist or
// does not decode. Only the round-end stat block uses it.
type Lookahead func(offset int) (string, bool)

// Line is the matcher input: one decoded log line plus bounded
// lookahead over the lines that follow it.
type Line struct {
	Time    time.Time
	Payload string
	Ahead   Lookahead
}

// Matcher turns a decoded line into a typed event, or declares no
// match. Implementations are stateless and safe for concurrent use.
type Matcher interface {
	Match(line Line) (events.Event, bool)
}

// InRound returns the in-round matchers in priority order with the
// default round-end lookahead bound. New grammars are added by
// appending here, not by widening an existing pattern.
func InRound() []Matcher {
	return InRoundWithLookahead(statBlockCap)
}

// InRoundWithLookahead returns the in-round matchers with a custom
// bound on the round-end stat block scan.
func InRoundWithLookahead(lookahead int) []Matcher {
	return []Matcher{
		KillMatcher{},
		AttackMatcher{},
		AssistMatcher{},
		BombMatcher{},
		RoundStartMatcher{},
		RoundEndMatcher{LookaheadCap: lookahead},
	}
}

// playerToken matches one quoted player reference:
// "Name<num><steamid><team>". Names may contain angle brackets and
// punctuation; the trailing <num><steamid><team> triple is authoritative.
// Groups: 1=name 2=num 3=steamid-or-BOT 4=team.
const playerToken = `"(.+?)<(\d+)><([^<>]*)><([^<>]*)>"`

// coordToken matches the bracketed world position after a player token.
// Groups: 1=x 2=y 3=z.
const coordToken = `\[(-?\d+) (-?\d+) (-?\d+)\]`

const botMarker = "BOT"

// player builds a Player from the four playerToken capture groups.
func player(name, _, steamID, team string) events.Player {
	p := events.Player{
		Name: name,
		Team: events.Team(team),
	}
	if steamID == botMarker {
		p.IsBot = true
	} else if steamID != "" {
		id := steamID
		p.SteamID = &id
	}
	return p
}

// position builds a Position from three coordToken capture groups. The
// groups are guaranteed numeric by the pattern.
func position(x, y, z string) events.Position {
	fx, _ := strconv.ParseFloat(x, 64)
	fy, _ := strconv.ParseFloat(y, 64)
	fz, _ := strconv.ParseFloat(z, 64)
	return events.Position{X: fx, Y: fy, Z: fz}
}

var worldTriggerPattern = regexp.MustCompile(`^World triggered "([A-Za-z_]+)"`)

// worldTrigger extracts the trigger token from a World-triggered line,
// or returns "" when the line is not one.
func worldTrigger(payload string) string {
	m := worldTriggerPattern.FindStringSubmatch(payload)
	if m == nil {
		return ""
	}
	return m[1]
}
