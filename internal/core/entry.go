package core

import (
	"strings"
)

// ParsedEntry is the result of parsing one raw log line.
type ParsedEntry struct {
	Activity string
	Minutes  int
	Note     string
}

// ParseEntry splits a raw log line into activity, duration and note.
//
// The first whitespace token is the activity name. The remaining tokens are
// scanned left to right for the first one the duration parser accepts,
// trying the single token and then the adjacent pair (so "1 hour" works).
// Everything left over re-joins into the note with single spaces.
//
// Returns ErrNoDuration when no token parses as a duration and
// ErrEmptyActivity when the line has no activity name.
func ParseEntry(raw string) (ParsedEntry, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return ParsedEntry{}, ErrEmptyActivity
	}

	activity := NormalizeActivity(tokens[0])
	if activity == "" {
		return ParsedEntry{}, ErrEmptyActivity
	}

	rest := tokens[1:]
	for i := range rest {
		if minutes, err := ParseDuration(rest[i]); err == nil {
			return ParsedEntry{
				Activity: activity,
				Minutes:  minutes,
				Note:     joinNote(rest, i, 1),
			}, nil
		}
		if i+1 < len(rest) {
			if minutes, err := ParseDuration(rest[i] + " " + rest[i+1]); err == nil {
				return ParsedEntry{
					Activity: activity,
					Minutes:  minutes,
					Note:     joinNote(rest, i, 2),
				}, nil
			}
		}
	}

	return ParsedEntry{}, ErrNoDuration
}

// joinNote rebuilds the note from tokens, skipping the consumed duration
// tokens at [start, start+width). Original order is preserved; whitespace
// runs collapse to single spaces.
func joinNote(tokens []string, start, width int) string {
	kept := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if i >= start && i < start+width {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
