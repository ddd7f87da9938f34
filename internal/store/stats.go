package store

import (
	"context"
	"fmt"
)

// PlayerStat is one player's per-game tally, recomputed by the scoring
// pass after a game is processed.
type PlayerStat struct {
	GameTS       string
	PlayerKey    string
	Name         string
	Kills        int
	Headshots    int
	Deaths       int
	Assists      int
	FlashAssists int
	Damage       int
	BombsPlanted int
	BombsDefused int
}

const sqliteInsertStat = `INSERT OR REPLACE INTO player_stats
	(game_ts, player_key, name, kills, headshots, deaths, assists, flash_assists, damage, bombs_planted, bombs_defused)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const postgresInsertStat = `INSERT INTO player_stats
	(game_ts, player_key, name, kills, headshots, deaths, assists, flash_assists, damage, bombs_planted, bombs_defused)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (game_ts, player_key) DO UPDATE SET name = EXCLUDED.name,
		kills = EXCLUDED.kills, headshots = EXCLUDED.headshots, deaths = EXCLUDED.deaths,
		assists = EXCLUDED.assists, flash_assists = EXCLUDED.flash_assists,
		damage = EXCLUDED.damage, bombs_planted = EXCLUDED.bombs_planted,
		bombs_defused = EXCLUDED.bombs_defused`

// GetPlayerStats returns a game's per-player tallies ordered by player
// key.
func (r *Reader) GetPlayerStats(ctx context.Context, gameTS string) ([]PlayerStat, error) {
	query := r.rebind(`SELECT game_ts, player_key, name, kills, headshots, deaths,
		assists, flash_assists, damage, bombs_planted, bombs_defused
		FROM player_stats WHERE game_ts = ? ORDER BY player_key`)
	rows, err := r.db.QueryContext(ctx, query, gameTS)
	if err != nil {
		return nil, fmt.Errorf("failed to query player stats: %w", err)
	}
	defer rows.Close()

	var stats []PlayerStat
	for rows.Next() {
		var s PlayerStat
		if err := rows.Scan(&s.GameTS, &s.PlayerKey, &s.Name, &s.Kills, &s.Headshots,
			&s.Deaths, &s.Assists, &s.FlashAssists, &s.Damage,
			&s.BombsPlanted, &s.BombsDefused); err != nil {
			return nil, fmt.Errorf("failed to scan player stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// UpsertPlayerStat inserts or replaces one player's per-game tally.
func (r *Recorder) UpsertPlayerStat(ctx context.Context, s PlayerStat) error {
	query := sqliteInsertStat
	if r.dialect == DialectPostgres {
		query = postgresInsertStat
	}
	_, err := r.db.ExecContext(ctx, query,
		s.GameTS, s.PlayerKey, s.Name, s.Kills, s.Headshots, s.Deaths,
		s.Assists, s.FlashAssists, s.Damage, s.BombsPlanted, s.BombsDefused)
	if err != nil {
		return fmt.Errorf("failed to upsert player stat: %w", err)
	}
	return nil
}
