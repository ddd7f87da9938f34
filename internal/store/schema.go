package store

import (
	"context"
	"database/sql"
	"fmt"
)

// The SQLite schema for parsed match data. Uses modernc.org/sqlite, a
// pure Go driver with no CGO dependency. Primary keys double as the
// idempotency keys for replay: re-recording the same game overwrites
// rows instead of duplicating them.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS games (
	ts TEXT PRIMARY KEY,
	map TEXT NOT NULL,
	mode TEXT NOT NULL,
	team1_score INTEGER NOT NULL,
	team2_score INTEGER NOT NULL,
	duration_min INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rounds (
	game_ts TEXT NOT NULL,
	round_index INTEGER NOT NULL,
	started_at TEXT NOT NULL,
	ended_at TEXT,
	player_ids TEXT,
	PRIMARY KEY(game_ts, round_index),
	FOREIGN KEY(game_ts) REFERENCES games(ts)
);

CREATE TABLE IF NOT EXISTS game_events (
	game_ts TEXT NOT NULL,
	seq INTEGER NOT NULL,
	round_index INTEGER NOT NULL,
	type TEXT NOT NULL,
	at TEXT NOT NULL,
	actor_name TEXT,
	actor_steamid TEXT,
	victim_name TEXT,
	victim_steamid TEXT,
	meta_json TEXT,
	PRIMARY KEY(game_ts, seq),
	FOREIGN KEY(game_ts) REFERENCES games(ts)
);

CREATE TABLE IF NOT EXISTS accolades (
	game_ts TEXT NOT NULL,
	type TEXT NOT NULL,
	player_name TEXT NOT NULL,
	player_id INTEGER,
	value REAL NOT NULL,
	pos INTEGER NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(game_ts, type, pos),
	FOREIGN KEY(game_ts) REFERENCES games(ts)
);

CREATE TABLE IF NOT EXISTS processed_games (
	event_type TEXT NOT NULL,
	ts TEXT NOT NULL,
	PRIMARY KEY(event_type, ts)
);

CREATE TABLE IF NOT EXISTS player_stats (
	game_ts TEXT NOT NULL,
	player_key TEXT NOT NULL,
	name TEXT NOT NULL,
	kills INTEGER NOT NULL DEFAULT 0,
	headshots INTEGER NOT NULL DEFAULT 0,
	deaths INTEGER NOT NULL DEFAULT 0,
	assists INTEGER NOT NULL DEFAULT 0,
	flash_assists INTEGER NOT NULL DEFAULT 0,
	damage INTEGER NOT NULL DEFAULT 0,
	bombs_planted INTEGER NOT NULL DEFAULT 0,
	bombs_defused INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(game_ts, player_key),
	FOREIGN KEY(game_ts) REFERENCES games(ts)
);

CREATE INDEX IF NOT EXISTS idx_game_events_type ON game_events(type);
CREATE INDEX IF NOT EXISTS idx_game_events_round ON game_events(game_ts, round_index);
CREATE INDEX IF NOT EXISTS idx_game_events_actor ON game_events(actor_steamid);
CREATE INDEX IF NOT EXISTS idx_accolades_game ON accolades(game_ts);
CREATE INDEX IF NOT EXISTS idx_player_stats_game ON player_stats(game_ts);
`

// The same schema in Postgres form (lib/pq).
const postgresSchema = `
CREATE TABLE IF NOT EXISTS games (
	ts TEXT PRIMARY KEY,
	map TEXT NOT NULL,
	mode TEXT NOT NULL,
	team1_score INTEGER NOT NULL,
	team2_score INTEGER NOT NULL,
	duration_min INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rounds (
	game_ts TEXT NOT NULL REFERENCES games(ts),
	round_index INTEGER NOT NULL,
	started_at TEXT NOT NULL,
	ended_at TEXT,
	player_ids TEXT,
	PRIMARY KEY(game_ts, round_index)
);

CREATE TABLE IF NOT EXISTS game_events (
	game_ts TEXT NOT NULL REFERENCES games(ts),
	seq INTEGER NOT NULL,
	round_index INTEGER NOT NULL,
	type TEXT NOT NULL,
	at TEXT NOT NULL,
	actor_name TEXT,
	actor_steamid TEXT,
	victim_name TEXT,
	victim_steamid TEXT,
	meta_json TEXT,
	PRIMARY KEY(game_ts, seq)
);

CREATE TABLE IF NOT EXISTS accolades (
	game_ts TEXT NOT NULL REFERENCES games(ts),
	type TEXT NOT NULL,
	player_name TEXT NOT NULL,
	player_id BIGINT,
	value DOUBLE PRECISION NOT NULL,
	pos INTEGER NOT NULL,
	score DOUBLE PRECISION NOT NULL,
	PRIMARY KEY(game_ts, type, pos)
);

CREATE TABLE IF NOT EXISTS processed_games (
	event_type TEXT NOT NULL,
	ts TEXT NOT NULL,
	PRIMARY KEY(event_type, ts)
);

CREATE TABLE IF NOT EXISTS player_stats (
	game_ts TEXT NOT NULL REFERENCES games(ts),
	player_key TEXT NOT NULL,
	name TEXT NOT NULL,
	kills INTEGER NOT NULL DEFAULT 0,
	headshots INTEGER NOT NULL DEFAULT 0,
	deaths INTEGER NOT NULL DEFAULT 0,
	assists INTEGER NOT NULL DEFAULT 0,
	flash_assists INTEGER NOT NULL DEFAULT 0,
	damage INTEGER NOT NULL DEFAULT 0,
	bombs_planted INTEGER NOT NULL DEFAULT 0,
	bombs_defused INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(game_ts, player_key)
);

CREATE INDEX IF NOT EXISTS idx_game_events_type ON game_events(type);
CREATE INDEX IF NOT EXISTS idx_game_events_round ON game_events(game_ts, round_index);
CREATE INDEX IF NOT EXISTS idx_game_events_actor ON game_events(actor_steamid);
CREATE INDEX IF NOT EXISTS idx_accolades_game ON accolades(game_ts);
CREATE INDEX IF NOT EXISTS idx_player_stats_game ON player_stats(game_ts);
`

// InitSchema initializes the schema for the given dialect. All
// statements are idempotent.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == DialectPostgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
