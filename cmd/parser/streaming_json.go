package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// JSONEvent is the flat NDJSON record written for every emitted event.
// Optional fields are pointers so absent values serialize as null
// rather than zero.
type JSONEvent struct {
	Type        string     `json:"type"`
	At          time.Time  `json:"at"`
	Actor       *string    `json:"actor,omitempty"`
	ActorSteam  *string    `json:"actor_steamid,omitempty"`
	Victim      *string    `json:"victim,omitempty"`
	VictimSteam *string    `json:"victim_steamid,omitempty"`
	Weapon      *string    `json:"weapon,omitempty"`
	Headshot    *bool      `json:"headshot,omitempty"`
	Damage      *int       `json:"damage,omitempty"`
	ArmorDamage *int       `json:"damage_armor,omitempty"`
	Hitgroup    *string    `json:"hitgroup,omitempty"`
	AssistKind  *string    `json:"assist_kind,omitempty"`
	BombAction  *string    `json:"bomb_action,omitempty"`
	PlayerIDs   []int      `json:"player_ids,omitempty"`
	Map         *string    `json:"map,omitempty"`
	Mode        *string    `json:"mode,omitempty"`
	Team1Score  *int       `json:"team1_score,omitempty"`
	Team2Score  *int       `json:"team2_score,omitempty"`
	Duration    *int       `json:"duration_min,omitempty"`
	Positions   []position `json:"positions,omitempty"`
}

type position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// jsonAccolade is the NDJSON record for one queued accolade.
type jsonAccolade struct {
	Type       string    `json:"type"`
	At         time.Time `json:"at"`
	Award      string    `json:"award"`
	PlayerName string    `json:"player"`
	PlayerID   *int64    `json:"player_id,omitempty"`
	Value      float64   `json:"value"`
	Pos        int       `json:"pos"`
	Score      float64   `json:"score"`
}

// jsonSink streams parsed events and accolade batches to a file as
// NDJSON. It implements both the event sink and the accolade sink.
type jsonSink struct {
	f      *os.File
	w      *bufio.Writer
	closed bool
}

func newJSONSink(path string) (*jsonSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &jsonSink{f: f, w: bufio.NewWriterSize(f, 64*1024)}, nil
}

// OnEvent converts one event to its flat record and writes it.
func (s *jsonSink) OnEvent(ctx context.Context, ev events.Event) error {
	rec := JSONEvent{Type: ev.Kind(), At: ev.When()}

	switch e := ev.(type) {
	case events.KillEvent:
		rec.Actor, rec.ActorSteam = playerFields(e.Attacker)
		rec.Victim, rec.VictimSteam = playerFields(e.Victim)
		rec.Weapon = &e.Weapon
		rec.Headshot = &e.Headshot
		rec.Positions = []position{
			{e.AttackerPos.X, e.AttackerPos.Y, e.AttackerPos.Z},
			{e.VictimPos.X, e.VictimPos.Y, e.VictimPos.Z},
		}
	case events.AssistEvent:
		rec.Actor, rec.ActorSteam = playerFields(e.Assister)
		rec.Victim, rec.VictimSteam = playerFields(e.Victim)
		kind := string(e.Assist)
		rec.AssistKind = &kind
	case events.AttackEvent:
		rec.Actor, rec.ActorSteam = playerFields(e.Attacker)
		rec.Victim, rec.VictimSteam = playerFields(e.Victim)
		rec.Weapon = &e.Weapon
		rec.Damage = &e.Damage
		rec.ArmorDamage = &e.ArmorDamage
		rec.Hitgroup = &e.Hitgroup
		rec.Positions = []position{
			{e.AttackerPos.X, e.AttackerPos.Y, e.AttackerPos.Z},
			{e.VictimPos.X, e.VictimPos.Y, e.VictimPos.Z},
		}
	case events.BombEvent:
		rec.Actor, rec.ActorSteam = playerFields(e.Actor)
		rec.BombAction = &e.Action
	case events.RoundStartEvent:
		// type and timestamp only
	case events.RoundEndEvent:
		rec.PlayerIDs = e.PlayerIDs
	case events.GameOverEvent:
		rec.Map = &e.Map
		rec.Mode = &e.Mode
		rec.Team1Score = &e.Team1Score
		rec.Team2Score = &e.Team2Score
		rec.Duration = &e.Duration
	case events.GameProcessedEvent:
		// type and timestamp only
	}

	return s.writeJSON(rec)
}

// QueueAccolades writes one record per accolade in the batch.
func (s *jsonSink) QueueAccolades(ctx context.Context, records []events.AccoladeRecord) error {
	for _, rec := range records {
		out := jsonAccolade{
			Type:       "ACCOLADE",
			At:         rec.Timestamp,
			Award:      rec.Type,
			PlayerName: rec.PlayerName,
			PlayerID:   rec.PlayerID,
			Value:      rec.Value,
			Pos:        rec.Position,
			Score:      rec.Score,
		}
		if err := s.writeJSON(out); err != nil {
			return err
		}
	}
	return nil
}

func (s *jsonSink) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// Close flushes and closes the output file. Safe to call twice.
func (s *jsonSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}

func playerFields(p events.Player) (*string, *string) {
	name := p.Name
	var steam *string
	if p.SteamID != nil {
		steam = p.SteamID
	}
	return &name, steam
}

// nopGate is the dedup gate for JSON mode: nothing is ever considered
// already processed, every complete game is emitted.
type nopGate struct{}

func (nopGate) Exists(ctx context.Context, eventType string, ts time.Time) (bool, error) {
	return false, nil
}
