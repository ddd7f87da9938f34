package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Game is one persisted game row.
type Game struct {
	TS         string
	Map        string
	Mode       string
	Team1Score int
	Team2Score int
	Duration   int
}

// StoredEvent is one persisted in-round event row.
type StoredEvent struct {
	GameTS        string
	Seq           int
	RoundIndex    int
	Type          string
	At            string
	ActorName     *string
	ActorSteamID  *string
	VictimName    *string
	VictimSteamID *string
	MetaJSON      *string
}

// Accolade is one persisted end-of-game award row.
type Accolade struct {
	GameTS     string
	Type       string
	PlayerName string
	PlayerID   *int64
	Value      float64
	Pos        int
	Score      float64
}

// Reader provides read access to persisted match data. The queries use
// `?` placeholders rebound for Postgres, so one Reader serves both
// dialects.
type Reader struct {
	db      *sql.DB
	dialect Dialect
}

// NewReader creates a reader over an opened database.
func NewReader(db *sql.DB, dialect Dialect) *Reader {
	return &Reader{db: db, dialect: dialect}
}

// rebind rewrites `?` placeholders to `$n` for Postgres.
func (r *Reader) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// ListGames returns every persisted game ordered by timestamp.
func (r *Reader) ListGames(ctx context.Context) ([]Game, error) {
	query := r.rebind(`SELECT ts, map, mode, team1_score, team2_score, duration_min FROM games ORDER BY ts`)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.TS, &g.Map, &g.Mode, &g.Team1Score, &g.Team2Score, &g.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// GetGame returns one game by timestamp key, or sql.ErrNoRows.
func (r *Reader) GetGame(ctx context.Context, ts string) (Game, error) {
	query := r.rebind(`SELECT ts, map, mode, team1_score, team2_score, duration_min FROM games WHERE ts = ?`)
	var g Game
	err := r.db.QueryRowContext(ctx, query, ts).
		Scan(&g.TS, &g.Map, &g.Mode, &g.Team1Score, &g.Team2Score, &g.Duration)
	if err != nil {
		return Game{}, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

// GetGameEvents returns a game's in-round events in sequence order.
func (r *Reader) GetGameEvents(ctx context.Context, gameTS string) ([]StoredEvent, error) {
	query := r.rebind(`SELECT game_ts, seq, round_index, type, at,
		actor_name, actor_steamid, victim_name, victim_steamid, meta_json
		FROM game_events WHERE game_ts = ? ORDER BY seq`)
	rows, err := r.db.QueryContext(ctx, query, gameTS)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var evs []StoredEvent
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.GameTS, &e.Seq, &e.RoundIndex, &e.Type, &e.At,
			&e.ActorName, &e.ActorSteamID, &e.VictimName, &e.VictimSteamID, &e.MetaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		evs = append(evs, e)
	}
	return evs, rows.Err()
}

// GetAccolades returns a game's accolades ordered by type and position.
func (r *Reader) GetAccolades(ctx context.Context, gameTS string) ([]Accolade, error) {
	query := r.rebind(`SELECT game_ts, type, player_name, player_id, value, pos, score
		FROM accolades WHERE game_ts = ? ORDER BY type, pos`)
	rows, err := r.db.QueryContext(ctx, query, gameTS)
	if err != nil {
		return nil, fmt.Errorf("failed to query accolades: %w", err)
	}
	defer rows.Close()

	var accs []Accolade
	for rows.Next() {
		var a Accolade
		if err := rows.Scan(&a.GameTS, &a.Type, &a.PlayerName, &a.PlayerID, &a.Value, &a.Pos, &a.Score); err != nil {
			return nil, fmt.Errorf("failed to scan accolade: %w", err)
		}
		accs = append(accs, a)
	}
	return accs, rows.Err()
}

// CountRounds returns how many rounds were persisted for a game.
func (r *Reader) CountRounds(ctx context.Context, gameTS string) (int, error) {
	query := r.rebind(`SELECT COUNT(1) FROM rounds WHERE game_ts = ?`)
	var count int
	if err := r.db.QueryRowContext(ctx, query, gameTS).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rounds: %w", err)
	}
	return count, nil
}
