package matchers

import (
	"testing"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

func TestAssistMatch(t *testing.T) {
	payload := `"Helper<5><[U:1:77]><CT>" assisted killing "B<2><[U:1:2]><TERRORIST>"`

	ev, ok := AssistMatcher{}.Match(Line{Time: testTime, Payload: payload})
	if !ok {
		t.Fatalf("expected assist line to match")
	}
	assist, ok := ev.(events.AssistEvent)
	if !ok {
		t.Fatalf("expected AssistEvent, got %T", ev)
	}
	if assist.Assist != events.AssistRegular {
		t.Errorf("expected regular assist, got %q", assist.Assist)
	}
	if assist.Kind() != "ASSIST" {
		t.Errorf("unexpected event kind: %q", assist.Kind())
	}
	if assist.Assister.Name != "Helper" {
		t.Errorf("unexpected assister name: %q", assist.Assister.Name)
	}
	if assist.Victim.Name != "B" {
		t.Errorf("unexpected victim name: %q", assist.Victim.Name)
	}
}

func TestFlashAssistMatch(t *testing.T) {
	payload := `"Helper<5><[U:1:77]><CT>" flash-assisted killing "B<2><BOT><TERRORIST>"`

	ev, ok := AssistMatcher{}.Match(Line{Time: testTime, Payload: payload})
	if !ok {
		t.Fatalf("expected flash assist line to match")
	}
	assist := ev.(events.AssistEvent)
	if assist.Assist != events.AssistFlash {
		t.Errorf("expected flash assist, got %q", assist.Assist)
	}
	if !assist.Victim.IsBot {
		t.Errorf("expected bot victim")
	}
}

func TestAssistRejectsCoordinates(t *testing.T) {
	// The assist grammar has no coordinate brackets; a line carrying
	// them is not an assist event.
	payload := `"Helper<5><[U:1:77]><CT>" [1 2 3] assisted killing "B<2><[U:1:2]><TERRORIST>"`
	if _, ok := (AssistMatcher{}).Match(Line{Time: testTime, Payload: payload}); ok {
		t.Fatalf("assist with coordinates must not match")
	}
}

func TestBombMatch(t *testing.T) {
	payload := `"Planter<7><[U:1:9]><TERRORIST>" triggered "Planted_The_Bomb" at bombsite B`

	ev, ok := BombMatcher{}.Match(Line{Time: testTime, Payload: payload})
	if !ok {
		t.Fatalf("expected bomb line to match")
	}
	bomb := ev.(events.BombEvent)
	if bomb.Action != "Planted_The_Bomb" {
		t.Errorf("unexpected action: %q", bomb.Action)
	}
	if bomb.Actor.Name != "Planter" {
		t.Errorf("unexpected actor: %q", bomb.Actor.Name)
	}
}

func TestBombExplosion(t *testing.T) {
	payload := `World triggered "SFUI_Notice_Target_Bombed"`

	ev, ok := BombMatcher{}.Match(Line{Time: testTime, Payload: payload})
	if !ok {
		t.Fatalf("expected explosion line to match")
	}
	bomb := ev.(events.BombEvent)
	if bomb.Action != "SFUI_Notice_Target_Bombed" {
		t.Errorf("unexpected action: %q", bomb.Action)
	}
}

func TestBombIgnoresOtherTriggers(t *testing.T) {
	payload := `"A<1><[U:1:1]><CT>" triggered "Touched_A_Hostage"`
	if _, ok := (BombMatcher{}).Match(Line{Time: testTime, Payload: payload}); ok {
		t.Fatalf("non-bomb trigger must not match")
	}
}
