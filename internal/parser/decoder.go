package parser

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// envelope is the outer JSON wrapper around every raw log line:
// {"time": "<ISO-8601>", "log": "L MM/DD/YYYY - HH:MM:SS: ..."}.
type envelope struct {
	Time string `json:"time"`
	Log  string `json:"log"`
}

// DecodedLine is one successfully unwrapped log line. Payload is the
// log text with the "L MM/DD/YYYY - HH:MM:SS: " prefix stripped.
type DecodedLine struct {
	Time    time.Time
	Payload string
}

// logLinePrefix matches the fixed server-clock prefix every real log
// line starts with. Group 1 is the event payload.
var logLinePrefix = regexp.MustCompile(`^L \d{2}/\d{2}/\d{4} - \d{2}:\d{2}:\d{2}: (.*)$`)

// DecodeLine unwraps the JSON envelope of one raw line. It returns
// false (never an error) when the line is not a recognizable log line:
// non-JSON input, missing or empty log field, missing "L " sentinel or
// malformed server-clock prefix. Production logs contain plenty of
// such lines (startup banners, stack traces) and they are expected.
func DecodeLine(raw string) (DecodedLine, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return DecodedLine{}, false
	}
	content := strings.TrimRight(env.Log, "\r\n")
	if content == "" || !strings.HasPrefix(content, "L ") {
		return DecodedLine{}, false
	}

	m := logLinePrefix.FindStringSubmatch(content)
	if m == nil {
		return DecodedLine{}, false
	}

	ts, err := parseEnvelopeTime(env.Time)
	if err != nil {
		return DecodedLine{}, false
	}

	return DecodedLine{Time: ts, Payload: m[1]}, true
}

// parseEnvelopeTime accepts the ISO-8601 variants seen in practice:
// RFC3339 with or without sub-second precision, and the same without a
// zone designator.
func parseEnvelopeTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	var lastErr error
	for _, layout := range layouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
