package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

func TestJSONSinkWritesNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	sink, err := newJSONSink(path)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	ts := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	steam := "U:1:111"
	alice := events.Player{Name: "Alice", SteamID: &steam, Team: events.TeamCT}
	bob := events.Player{Name: "Bot Bob", IsBot: true, Team: events.TeamTerrorist}

	id := int64(7)
	err = sink.QueueAccolades(context.Background(), []events.AccoladeRecord{
		{Timestamp: ts, Type: "kills", PlayerName: "Alice", PlayerID: &id, Value: 21, Position: 1, Score: 30.5},
	})
	if err != nil {
		t.Fatalf("queue accolades: %v", err)
	}

	sequence := []events.Event{
		events.GameOverEvent{Timestamp: ts, Map: "de_dust2", Mode: "competitive", Team1Score: 16, Team2Score: 10, Duration: 45},
		events.RoundStartEvent{Timestamp: ts},
		events.KillEvent{Timestamp: ts, Attacker: alice, Victim: bob, Weapon: "ak47", Headshot: true,
			AttackerPos: events.Position{X: 1, Y: 2, Z: 3}, VictimPos: events.Position{X: 4, Y: 5, Z: 6}},
		events.GameProcessedEvent{Timestamp: ts},
	}
	for _, ev := range sequence {
		if err := sink.OnEvent(context.Background(), ev); err != nil {
			t.Fatalf("sink %T: %v", ev, err)
		}
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	var records []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("invalid json line %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan output: %v", err)
	}

	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	if records[0]["type"] != "ACCOLADE" || records[0]["award"] != "kills" {
		t.Errorf("unexpected accolade record: %v", records[0])
	}
	if records[1]["type"] != "GAME_OVER" || records[1]["map"] != "de_dust2" {
		t.Errorf("unexpected game over record: %v", records[1])
	}
	if records[2]["type"] != "ROUND_START" {
		t.Errorf("unexpected round start record: %v", records[2])
	}

	kill := records[3]
	if kill["type"] != "KILL" || kill["actor"] != "Alice" || kill["actor_steamid"] != "U:1:111" {
		t.Errorf("unexpected kill record: %v", kill)
	}
	if _, hasSteam := kill["victim_steamid"]; hasSteam {
		t.Errorf("bot victim must not carry a steamid: %v", kill)
	}
	if hs, ok := kill["headshot"].(bool); !ok || !hs {
		t.Errorf("headshot flag missing: %v", kill)
	}
	positions, ok := kill["positions"].([]interface{})
	if !ok || len(positions) != 2 {
		t.Errorf("expected two positions: %v", kill["positions"])
	}

	if records[4]["type"] != "GAME_PROCESSED" {
		t.Errorf("unexpected final record: %v", records[4])
	}
}
