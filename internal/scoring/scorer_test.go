package scoring

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bageshwar/rankforge-sub000/internal/events"
	"github.com/bageshwar/rankforge-sub000/internal/store"
)

func steamID(s string) *string { return &s }

func setupGame(t *testing.T) (*Scorer, *store.Reader, string) {
	t.Helper()
	ctx := context.Background()
	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rec := store.NewRecorder(db, store.DialectSQLite, nil)
	reader := store.NewReader(db, store.DialectSQLite)

	ts := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	alice := events.Player{Name: "Alice", SteamID: steamID("U:1:111"), Team: events.TeamCT}
	bob := events.Player{Name: "Bob", SteamID: steamID("U:1:222"), Team: events.TeamTerrorist}
	carol := events.Player{Name: "Carol", SteamID: steamID("U:1:333"), Team: events.TeamCT}

	sequence := []events.Event{
		events.GameOverEvent{Timestamp: ts, Map: "de_inferno", Mode: "competitive", Team1Score: 1, Team2Score: 0, Duration: 5},
		events.RoundStartEvent{Timestamp: ts},
		events.AttackEvent{Timestamp: ts, Attacker: alice, Victim: bob, Weapon: "ak47", Damage: 27, ArmorDamage: 3, Hitgroup: "chest"},
		events.AttackEvent{Timestamp: ts, Attacker: alice, Victim: bob, Weapon: "ak47", Damage: 100, Hitgroup: "head"},
		events.KillEvent{Timestamp: ts, Attacker: alice, Victim: bob, Weapon: "ak47", Headshot: true},
		events.AssistEvent{Timestamp: ts, Assister: carol, Victim: bob, Assist: events.AssistFlash},
		events.KillEvent{Timestamp: ts, Attacker: bob, Victim: carol, Weapon: "glock"},
		events.AssistEvent{Timestamp: ts, Assister: alice, Victim: carol, Assist: events.AssistRegular},
		events.BombEvent{Timestamp: ts, Actor: bob, Action: "Planted_The_Bomb"},
		events.BombEvent{Timestamp: ts, Actor: alice, Action: "Defused_The_Bomb"},
		events.BombEvent{Timestamp: ts, Actor: bob, Action: "Dropped_The_Bomb"},
		events.GameProcessedEvent{Timestamp: ts},
	}
	for i, ev := range sequence {
		if err := rec.OnEvent(ctx, ev); err != nil {
			t.Fatalf("event %d (%T): %v", i, ev, err)
		}
	}
	return NewScorer(reader, rec), reader, store.TimestampKey(ts)
}

func TestComputeStats(t *testing.T) {
	scorer, reader, gameTS := setupGame(t)
	ctx := context.Background()

	if err := scorer.ComputeStats(ctx, gameTS); err != nil {
		t.Fatalf("compute stats: %v", err)
	}

	stats, err := reader.GetPlayerStats(ctx, gameTS)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	byKey := make(map[string]store.PlayerStat, len(stats))
	for _, s := range stats {
		byKey[s.PlayerKey] = s
	}

	alice := byKey["U:1:111"]
	if alice.Name != "Alice" {
		t.Errorf("unexpected name: %q", alice.Name)
	}
	if alice.Kills != 1 || alice.Headshots != 1 || alice.Deaths != 0 {
		t.Errorf("unexpected alice kill line: %+v", alice)
	}
	if alice.Assists != 1 || alice.FlashAssists != 0 {
		t.Errorf("unexpected alice assists: %+v", alice)
	}
	if alice.Damage != 127 {
		t.Errorf("expected 127 damage, got %d", alice.Damage)
	}
	if alice.BombsDefused != 1 || alice.BombsPlanted != 0 {
		t.Errorf("unexpected alice bomb stats: %+v", alice)
	}

	bob := byKey["U:1:222"]
	if bob.Kills != 1 || bob.Headshots != 0 || bob.Deaths != 1 {
		t.Errorf("unexpected bob kill line: %+v", bob)
	}
	if bob.BombsPlanted != 1 || bob.BombsDefused != 0 {
		t.Errorf("unexpected bob bomb stats: %+v", bob)
	}

	carol := byKey["U:1:333"]
	if carol.FlashAssists != 1 || carol.Assists != 0 || carol.Deaths != 1 {
		t.Errorf("unexpected carol stats: %+v", carol)
	}
}

func TestComputeStatsIsRepeatable(t *testing.T) {
	scorer, reader, gameTS := setupGame(t)
	ctx := context.Background()

	if err := scorer.ComputeStats(ctx, gameTS); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if err := scorer.ComputeStats(ctx, gameTS); err != nil {
		t.Fatalf("second pass: %v", err)
	}

	stats, err := reader.GetPlayerStats(ctx, gameTS)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 stat rows after recompute, got %d", len(stats))
	}
	for _, s := range stats {
		if s.PlayerKey == "U:1:111" && s.Damage != 127 {
			t.Errorf("recompute must not double damage, got %d", s.Damage)
		}
	}
}

func TestComputeStatsEmptyGame(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rec := store.NewRecorder(db, store.DialectSQLite, nil)
	reader := store.NewReader(db, store.DialectSQLite)
	scorer := NewScorer(reader, rec)

	if err := scorer.ComputeStats(ctx, "2023-01-02T03:04:05Z"); err != nil {
		t.Fatalf("empty game should not fail: %v", err)
	}
	stats, err := reader.GetPlayerStats(ctx, "2023-01-02T03:04:05Z")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("expected no stat rows, got %d", len(stats))
	}
}
