// Package core provides the pure domain logic for activity tracking:
// free-text parsing, ledger aggregation, goal progress, and streaks.
//
// This file parses duration tokens ("30m", "1h30m", "2 hours") into a
// minute count. Each token is classified as a numeric value, a unit word,
// or a compound value+unit run; no regular expressions involved.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// minute and hour unit words, compared after lowercasing.
var (
	minuteUnits = map[string]bool{
		"m": true, "min": true, "mins": true, "minute": true, "minutes": true,
	}
	hourUnits = map[string]bool{
		"h": true, "hr": true, "hrs": true, "hour": true, "hours": true,
	}
)

// ParseDuration converts a free-text duration into minutes.
//
// Recognized shapes (case-insensitive, surrounding space ignored):
//
//	30m  30min  30 minutes  2h  2 hours  1h30m
//
// Hour shapes convert via hours*60+minutes. Returns ErrBadDuration for
// anything else, including zero and negative values.
func ParseDuration(text string) (int, error) {
	fields := strings.Fields(strings.ToLower(text))
	switch len(fields) {
	case 1:
		return parseDurationToken(fields[0])
	case 2:
		// "<int> minutes" / "<int> hours": a bare number followed by a unit word.
		return parseValueUnit(fields[0], fields[1])
	default:
		return 0, ErrBadDuration
	}
}

// parseValueUnit handles a separated value and unit pair ("45", "minutes").
func parseValueUnit(value, unit string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, ErrBadDuration
	}
	switch {
	case minuteUnits[unit]:
		return n, nil
	case hourUnits[unit]:
		return n * 60, nil
	default:
		return 0, ErrBadDuration
	}
}

// parseDurationToken handles a single compact token: "30m", "2h", "1h30m".
func parseDurationToken(tok string) (int, error) {
	segs := splitRuns(tok)
	switch len(segs) {
	case 2: // <int><unit>
		return parseValueUnit(segs[0], segs[1])
	case 4: // <int>h<int>m combined
		if !hourUnits[segs[1]] || !minuteUnits[segs[3]] {
			return 0, ErrBadDuration
		}
		hours, err1 := strconv.Atoi(segs[0])
		minutes, err2 := strconv.Atoi(segs[2])
		if err1 != nil || err2 != nil {
			return 0, ErrBadDuration
		}
		// "0h30m" is fine, "1h0m" is fine, but the total must be positive.
		if hours < 0 || minutes < 0 || hours*60+minutes <= 0 {
			return 0, ErrBadDuration
		}
		return hours*60 + minutes, nil
	default:
		return 0, ErrBadDuration
	}
}

// splitRuns splits a token into alternating digit and letter runs.
// "1h30m" -> ["1" "h" "30" "m"]. Any other rune aborts the split.
func splitRuns(tok string) []string {
	var segs []string
	var cur strings.Builder
	var curDigit bool
	for i, r := range tok {
		isDigit := unicode.IsDigit(r)
		if !isDigit && !unicode.IsLetter(r) {
			return nil
		}
		if i == 0 || isDigit == curDigit {
			cur.WriteRune(r)
		} else {
			segs = append(segs, cur.String())
			cur.Reset()
			cur.WriteRune(r)
		}
		curDigit = isDigit
	}
	if cur.Len() > 0 {
		segs = append(segs, cur.String())
	}
	return segs
}
