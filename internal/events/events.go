// Package events defines the parsed-event model shared by the log parser,
// the persistence layer and the scoring pass. The Event interface is a
// closed sum: every variant lives in this package and carries the
// unexported marker method, so sinks can switch over the concrete types
// exhaustively.
package events

import "time"

// Team is the side a player was on when the line was logged.
type Team string

const (
	TeamCT        Team = "CT"
	TeamTerrorist Team = "TERRORIST"
)

// Event is the closed union of everything the parser can emit.
type Event interface {
	// Kind returns the stable type tag used for persistence and dedup
	// (e.g. "KILL", "GAME_OVER").
	Kind() string

	// When returns the wall-clock timestamp of the originating log line
	// (the JSON envelope time, not the in-line server clock).
	When() time.Time

	isEvent()
}

// Position is a world coordinate triple as logged by the server.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Player identifies one participant as it appears in a quoted player
// token ("Name<num><steamid><team>"). SteamID is nil exactly when the
// token carried the literal BOT marker.
type Player struct {
	Name    string
	SteamID *string // Steam ID3 ("[U:1:N]"), nil for bots
	IsBot   bool
	Team    Team
}

// AssistKind distinguishes regular assists from flashbang assists.
type AssistKind string

const (
	AssistRegular AssistKind = "regular"
	AssistFlash   AssistKind = "flash"
)

// KillEvent is one player killing another. Both positions are always
// populated; a kill line without coordinates does not parse.
type KillEvent struct {
	Timestamp   time.Time
	Attacker    Player
	Victim      Player
	Weapon      string
	Headshot    bool
	AttackerPos Position
	VictimPos   Position
}

// AssistEvent is a kill assist. The assist grammar never carries
// coordinates, so the variant has none.
type AssistEvent struct {
	Timestamp time.Time
	Assister  Player
	Victim    Player
	Assist    AssistKind
}

// AttackEvent is one player damaging another. Positions are mandatory,
// damage values and hitgroup are passed through uninterpreted.
type AttackEvent struct {
	Timestamp   time.Time
	Attacker    Player
	Victim      Player
	Weapon      string
	Damage      int
	ArmorDamage int
	Hitgroup    string
	AttackerPos Position
	VictimPos   Position
}

// BombEvent is a bomb interaction (planted, defused, dropped, ...).
// Action is the raw trigger token from the log line.
type BombEvent struct {
	Timestamp time.Time
	Actor     Player
	Action    string
}

// RoundStartEvent marks a World-triggered Round_Start line.
type RoundStartEvent struct {
	Timestamp time.Time
}

// RoundEndEvent marks a World-triggered Round_End line. PlayerIDs holds
// the numeric ids collected from the per-player stat block that follows
// the line; it may be empty when no block was present.
type RoundEndEvent struct {
	Timestamp time.Time
	PlayerIDs []int
}

// GameOverEvent is the authoritative end-of-game marker with the final
// score. Duration is the trailing "after N min" value.
type GameOverEvent struct {
	Timestamp  time.Time
	Map        string
	Mode       string
	Team1Score int
	Team2Score int
	Duration   int
}

// GameProcessedEvent is synthetic: the replay of a finished game caught
// back up to the original game-over line and the match context closed.
type GameProcessedEvent struct {
	Timestamp time.Time
}

// AccoladeRecord is one end-of-game per-player award line. PlayerID is
// nil when the accolade line carried no numeric id (bot awards).
type AccoladeRecord struct {
	Timestamp  time.Time
	Type       string
	PlayerName string
	PlayerID   *int64
	Value      float64
	Position   int
	Score      float64
}

func (e KillEvent) Kind() string          { return "KILL" }
func (e AssistEvent) Kind() string        { return "ASSIST" }
func (e AttackEvent) Kind() string        { return "ATTACK" }
func (e BombEvent) Kind() string          { return "BOMB" }
func (e RoundStartEvent) Kind() string    { return "ROUND_START" }
func (e RoundEndEvent) Kind() string      { return "ROUND_END" }
func (e GameOverEvent) Kind() string      { return "GAME_OVER" }
func (e GameProcessedEvent) Kind() string { return "GAME_PROCESSED" }

func (e KillEvent) When() time.Time          { return e.Timestamp }
func (e AssistEvent) When() time.Time        { return e.Timestamp }
func (e AttackEvent) When() time.Time        { return e.Timestamp }
func (e BombEvent) When() time.Time          { return e.Timestamp }
func (e RoundStartEvent) When() time.Time    { return e.Timestamp }
func (e RoundEndEvent) When() time.Time      { return e.Timestamp }
func (e GameOverEvent) When() time.Time      { return e.Timestamp }
func (e GameProcessedEvent) When() time.Time { return e.Timestamp }

func (e KillEvent) isEvent()          {}
func (e AssistEvent) isEvent()        {}
func (e AttackEvent) isEvent()        {}
func (e BombEvent) isEvent()          {}
func (e RoundStartEvent) isEvent()    {}
func (e RoundEndEvent) isEvent()      {}
func (e GameOverEvent) isEvent()      {}
func (e GameProcessedEvent) isEvent() {}
