package ipc

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var msgs []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var msg map[string]interface{}
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestOutputMessages(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(&buf)

	out.Progress(50, 200, 1)
	out.Log("info", "hello")
	out.Error("boom")
	out.Done(200, 28, 1)

	msgs := decodeLines(t, &buf)
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}

	if msgs[0]["type"] != "progress" || msgs[0]["pct"] != 25.0 {
		t.Errorf("unexpected progress message: %v", msgs[0])
	}
	if msgs[1]["type"] != "log" || msgs[1]["level"] != "info" || msgs[1]["msg"] != "hello" {
		t.Errorf("unexpected log message: %v", msgs[1])
	}
	if msgs[2]["type"] != "error" || msgs[2]["msg"] != "boom" {
		t.Errorf("unexpected error message: %v", msgs[2])
	}
	if msgs[3]["type"] != "done" || msgs[3]["games"] != 1.0 {
		t.Errorf("unexpected done message: %v", msgs[3])
	}
}

func TestProgressZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(&buf)

	out.Progress(0, 0, 0)

	msgs := decodeLines(t, &buf)
	if msgs[0]["pct"] != 0.0 {
		t.Errorf("expected 0 pct for empty input, got %v", msgs[0]["pct"])
	}
}
