// Package scoring computes per-player match tallies from the persisted
// events of one game. It is a plain aggregation pass, deliberately not
// a rating system; ranks are computed elsewhere.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bageshwar/rankforge-sub000/internal/store"
)

// Scorer tallies per-player stats for processed games.
type Scorer struct {
	reader   *store.Reader
	recorder *store.Recorder
}

// NewScorer creates a scorer over one store.
func NewScorer(reader *store.Reader, recorder *store.Recorder) *Scorer {
	return &Scorer{reader: reader, recorder: recorder}
}

// ComputeStats aggregates a game's events into per-player tallies and
// upserts them, replacing any previous tally rows for the game.
func (s *Scorer) ComputeStats(ctx context.Context, gameTS string) error {
	evs, err := s.reader.GetGameEvents(ctx, gameTS)
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}

	tallies := make(map[string]*store.PlayerStat)
	tally := func(key string, name *string) *store.PlayerStat {
		if tallies[key] == nil {
			tallies[key] = &store.PlayerStat{GameTS: gameTS, PlayerKey: key}
		}
		if name != nil && tallies[key].Name == "" {
			tallies[key].Name = *name
		}
		return tallies[key]
	}

	for _, ev := range evs {
		var meta map[string]interface{}
		if ev.MetaJSON != nil {
			// Malformed meta degrades to zero-valued fields, it never
			// fails the pass.
			_ = json.Unmarshal([]byte(*ev.MetaJSON), &meta)
		}

		switch ev.Type {
		case "KILL":
			if ev.ActorSteamID != nil {
				agg := tally(*ev.ActorSteamID, ev.ActorName)
				agg.Kills++
				if hs, ok := meta["headshot"].(bool); ok && hs {
					agg.Headshots++
				}
			}
			if ev.VictimSteamID != nil {
				tally(*ev.VictimSteamID, ev.VictimName).Deaths++
			}

		case "ASSIST":
			if ev.ActorSteamID == nil {
				continue
			}
			agg := tally(*ev.ActorSteamID, ev.ActorName)
			if kind, ok := meta["kind"].(string); ok && kind == "flash" {
				agg.FlashAssists++
			} else {
				agg.Assists++
			}

		case "ATTACK":
			if ev.ActorSteamID == nil {
				continue
			}
			agg := tally(*ev.ActorSteamID, ev.ActorName)
			if dmg, ok := meta["damage"].(float64); ok {
				agg.Damage += int(dmg)
			}

		case "BOMB":
			if ev.ActorSteamID == nil {
				continue
			}
			agg := tally(*ev.ActorSteamID, ev.ActorName)
			switch meta["action"] {
			case "Planted_The_Bomb":
				agg.BombsPlanted++
			case "Defused_The_Bomb":
				agg.BombsDefused++
			}
		}
	}

	for key, stat := range tallies {
		if err := s.recorder.UpsertPlayerStat(ctx, *stat); err != nil {
			return fmt.Errorf("failed to store stats for player %s: %w", key, err)
		}
	}
	return nil
}
