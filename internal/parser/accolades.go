package parser

import (
	"github.com/bageshwar/rankforge-sub000/internal/events"
	"github.com/bageshwar/rankforge-sub000/internal/parser/matchers"
)

// AccoladeAccumulator collects end-of-game award lines from a slice of
// raw lines. Lines that fail to decode or do not fit the accolade
// grammar are skipped, never fatal, so a malformed accolade line lowers
// the effective accolade count.
type AccoladeAccumulator struct{}

// Collect matches every line in [start, end) against the accolade
// grammar and returns the records in log order.
func (AccoladeAccumulator) Collect(lines []string, start, end int) []events.AccoladeRecord {
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}

	var records []events.AccoladeRecord
	for i := start; i < end; i++ {
		decoded, ok := DecodeLine(lines[i])
		if !ok {
			continue
		}
		rec, ok := matchers.MatchAccolade(decoded.Time, decoded.Payload)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}
