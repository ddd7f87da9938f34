package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// statements holds the dialect-specific SQL the recorder executes.
type statements struct {
	insertGame     string
	insertRound    string
	endRound       string
	insertEvent    string
	insertAccolade string
	markProcessed  string
	countProcessed string
}

var sqliteStatements = statements{
	insertGame: `INSERT OR REPLACE INTO games (ts, map, mode, team1_score, team2_score, duration_min)
		VALUES (?, ?, ?, ?, ?, ?)`,
	insertRound: `INSERT OR REPLACE INTO rounds (game_ts, round_index, started_at) VALUES (?, ?, ?)`,
	endRound:    `UPDATE rounds SET ended_at = ?, player_ids = ? WHERE game_ts = ? AND round_index = ?`,
	insertEvent: `INSERT OR REPLACE INTO game_events
		(game_ts, seq, round_index, type, at, actor_name, actor_steamid, victim_name, victim_steamid, meta_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	insertAccolade: `INSERT OR REPLACE INTO accolades (game_ts, type, player_name, player_id, value, pos, score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	markProcessed:  `INSERT OR REPLACE INTO processed_games (event_type, ts) VALUES (?, ?)`,
	countProcessed: `SELECT COUNT(1) FROM processed_games WHERE event_type = ? AND ts = ?`,
}

var postgresStatements = statements{
	insertGame: `INSERT INTO games (ts, map, mode, team1_score, team2_score, duration_min)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ts) DO UPDATE SET map = EXCLUDED.map, mode = EXCLUDED.mode,
			team1_score = EXCLUDED.team1_score, team2_score = EXCLUDED.team2_score,
			duration_min = EXCLUDED.duration_min`,
	insertRound: `INSERT INTO rounds (game_ts, round_index, started_at) VALUES ($1, $2, $3)
		ON CONFLICT (game_ts, round_index) DO UPDATE SET started_at = EXCLUDED.started_at`,
	endRound: `UPDATE rounds SET ended_at = $1, player_ids = $2 WHERE game_ts = $3 AND round_index = $4`,
	insertEvent: `INSERT INTO game_events
		(game_ts, seq, round_index, type, at, actor_name, actor_steamid, victim_name, victim_steamid, meta_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_ts, seq) DO UPDATE SET round_index = EXCLUDED.round_index,
			type = EXCLUDED.type, at = EXCLUDED.at, actor_name = EXCLUDED.actor_name,
			actor_steamid = EXCLUDED.actor_steamid, victim_name = EXCLUDED.victim_name,
			victim_steamid = EXCLUDED.victim_steamid, meta_json = EXCLUDED.meta_json`,
	insertAccolade: `INSERT INTO accolades (game_ts, type, player_name, player_id, value, pos, score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_ts, type, pos) DO UPDATE SET player_name = EXCLUDED.player_name,
			player_id = EXCLUDED.player_id, value = EXCLUDED.value, score = EXCLUDED.score`,
	markProcessed:  `INSERT INTO processed_games (event_type, ts) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
	countProcessed: `SELECT COUNT(1) FROM processed_games WHERE event_type = $1 AND ts = $2`,
}

// TimestampKey normalizes a timestamp into the canonical key used for
// game rows and dedup lookups. Both runs over the same file must
// produce identical keys, so the zone is normalized to UTC.
func TimestampKey(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

// openGame tracks the game currently being replayed into the store.
type openGame struct {
	ts    string
	round int // current round index, -1 before the first round start
	seq   int // per-game event sequence, the replay idempotency key
}

// Recorder persists parsed events. It implements the parser's event
// sink, accolade sink and dedup gate against one SQL database. A
// Recorder belongs to a single driver loop and is not safe for
// concurrent use, matching the single-threaded parser contract.
type Recorder struct {
	db      *sql.DB
	dialect Dialect
	stmts   statements
	logger  *slog.Logger

	current   *openGame
	pending   []events.AccoladeRecord
	processed []string // game timestamps completed during this run
}

// NewRecorder creates a recorder over an opened database.
func NewRecorder(db *sql.DB, dialect Dialect, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	stmts := sqliteStatements
	if dialect == DialectPostgres {
		stmts = postgresStatements
	}
	return &Recorder{
		db:      db,
		dialect: dialect,
		stmts:   stmts,
		logger:  logger.With("component", "recorder"),
	}
}

// Exists is the dedup gate: has a game with this event type and
// timestamp already been ingested?
func (r *Recorder) Exists(ctx context.Context, eventType string, ts time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, r.stmts.countProcessed, eventType, TimestampKey(ts)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query processed games: %w", err)
	}
	return count > 0, nil
}

// QueueAccolades buffers a game's accolade batch. The rows are written
// when the owning game-over event arrives, which is always the next
// event the sink sees.
func (r *Recorder) QueueAccolades(ctx context.Context, records []events.AccoladeRecord) error {
	r.pending = append(r.pending[:0], records...)
	return nil
}

// OnEvent routes one parsed event into the store. In-round events that
// arrive while no game is open (the replay of an already-processed
// game) are dropped: their rows exist from the first ingestion.
func (r *Recorder) OnEvent(ctx context.Context, ev events.Event) error {
	switch e := ev.(type) {
	case events.GameOverEvent:
		return r.openNewGame(ctx, e)
	case events.GameProcessedEvent:
		return r.closeGame(ctx)
	case events.RoundStartEvent:
		return r.startRound(ctx, e)
	case events.RoundEndEvent:
		return r.endRound(ctx, e)
	case events.KillEvent:
		meta := map[string]interface{}{
			"weapon":       e.Weapon,
			"headshot":     e.Headshot,
			"attacker_pos": []float64{e.AttackerPos.X, e.AttackerPos.Y, e.AttackerPos.Z},
			"victim_pos":   []float64{e.VictimPos.X, e.VictimPos.Y, e.VictimPos.Z},
		}
		return r.insertEvent(ctx, e.Kind(), e.Timestamp, &e.Attacker, &e.Victim, meta)
	case events.AssistEvent:
		meta := map[string]interface{}{"kind": string(e.Assist)}
		return r.insertEvent(ctx, "ASSIST", e.Timestamp, &e.Assister, &e.Victim, meta)
	case events.AttackEvent:
		meta := map[string]interface{}{
			"weapon":       e.Weapon,
			"damage":       e.Damage,
			"damage_armor": e.ArmorDamage,
			"hitgroup":     e.Hitgroup,
			"attacker_pos": []float64{e.AttackerPos.X, e.AttackerPos.Y, e.AttackerPos.Z},
			"victim_pos":   []float64{e.VictimPos.X, e.VictimPos.Y, e.VictimPos.Z},
		}
		return r.insertEvent(ctx, e.Kind(), e.Timestamp, &e.Attacker, &e.Victim, meta)
	case events.BombEvent:
		meta := map[string]interface{}{"action": e.Action}
		return r.insertEvent(ctx, e.Kind(), e.Timestamp, &e.Actor, nil, meta)
	}
	return nil
}

// ProcessedThisRun returns the timestamps of the games completed during
// this run, in completion order.
func (r *Recorder) ProcessedThisRun() []string {
	return r.processed
}

func (r *Recorder) openNewGame(ctx context.Context, e events.GameOverEvent) error {
	ts := TimestampKey(e.Timestamp)
	_, err := r.db.ExecContext(ctx, r.stmts.insertGame,
		ts, e.Map, e.Mode, e.Team1Score, e.Team2Score, e.Duration)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	r.current = &openGame{ts: ts, round: -1}

	for _, rec := range r.pending {
		var playerID interface{}
		if rec.PlayerID != nil {
			playerID = *rec.PlayerID
		}
		_, err := r.db.ExecContext(ctx, r.stmts.insertAccolade,
			ts, rec.Type, rec.PlayerName, playerID, rec.Value, rec.Position, rec.Score)
		if err != nil {
			return fmt.Errorf("failed to insert accolade: %w", err)
		}
	}
	r.logger.Info("game opened", "ts", ts, "map", e.Map, "accolades", len(r.pending))
	r.pending = r.pending[:0]
	return nil
}

func (r *Recorder) closeGame(ctx context.Context) error {
	if r.current == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, r.stmts.markProcessed, "GAME_OVER", r.current.ts)
	if err != nil {
		return fmt.Errorf("failed to mark game processed: %w", err)
	}
	r.processed = append(r.processed, r.current.ts)
	r.logger.Info("game processed", "ts", r.current.ts, "rounds", r.current.round+1)
	r.current = nil
	return nil
}

func (r *Recorder) startRound(ctx context.Context, e events.RoundStartEvent) error {
	if r.current == nil {
		return nil
	}
	r.current.round++
	_, err := r.db.ExecContext(ctx, r.stmts.insertRound,
		r.current.ts, r.current.round, TimestampKey(e.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}
	return nil
}

func (r *Recorder) endRound(ctx context.Context, e events.RoundEndEvent) error {
	if r.current == nil || r.current.round < 0 {
		return nil
	}
	ids, err := json.Marshal(e.PlayerIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal player ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, r.stmts.endRound,
		TimestampKey(e.Timestamp), string(ids), r.current.ts, r.current.round)
	if err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	return nil
}

func (r *Recorder) insertEvent(ctx context.Context, kind string, at time.Time, actor, victim *events.Player, meta map[string]interface{}) error {
	if r.current == nil {
		return nil
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal event meta: %w", err)
	}

	var actorName, actorSteamID, victimName, victimSteamID interface{}
	if actor != nil {
		actorName = actor.Name
		actorSteamID = playerKey(*actor)
	}
	if victim != nil {
		victimName = victim.Name
		victimSteamID = playerKey(*victim)
	}

	r.current.seq++
	_, err = r.db.ExecContext(ctx, r.stmts.insertEvent,
		r.current.ts, r.current.seq, r.current.round, kind, TimestampKey(at),
		actorName, actorSteamID, victimName, victimSteamID, string(metaJSON))
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// playerKey is the stable per-player identifier stored in event rows:
// the Steam ID3 for humans, a BOT:name marker for bots.
func playerKey(p events.Player) string {
	if p.SteamID != nil {
		return *p.SteamID
	}
	if p.IsBot {
		return "BOT:" + p.Name
	}
	return p.Name
}
