package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Umbrella sentinels: the specific errors below wrap one of these so callers
// can classify a failure without knowing every variant.
var (
	// ErrParse marks input text that matches no recognized shape.
	ErrParse = errors.New("cannot parse input")
	// ErrValidation marks well-formed but semantically invalid values.
	ErrValidation = errors.New("invalid value")
)

var (
	ErrNoDuration     = fmt.Errorf("%w: no duration token found", ErrParse)
	ErrBadDuration    = fmt.Errorf("%w: unrecognized duration", ErrParse)
	ErrEmptyActivity  = fmt.Errorf("%w: empty activity name", ErrValidation)
	ErrInvalidMinutes = fmt.Errorf("%w: minutes must be positive", ErrValidation)
	ErrInvalidTarget  = fmt.Errorf("%w: target minutes must be positive", ErrValidation)
	ErrEmptyUser      = fmt.Errorf("%w: empty user id", ErrValidation)
)

// ErrNotFound is returned by lookups that matched nothing, e.g. tapping a
// quick button that was never saved.
var ErrNotFound = errors.New("not found")

type (
	// Date is a calendar day. The wrapped time is always midnight UTC; the
	// zone used to derive a Date from a wall-clock instant is fixed at
	// deployment (TIMEZONE), never re-derived per user.
	Date struct {
		time.Time
	}

	// Entry is one logged activity occurrence. Entries are immutable once
	// created: the ledger only ever appends.
	Entry struct {
		ID       int64
		UserID   string
		Activity string // normalized: lowercased, trimmed
		Minutes  int
		Note     string
		At       time.Time
	}

	// Goal is a weekly minute target for one (user, activity) pair.
	// Setting it again overwrites the previous target.
	Goal struct {
		UserID        string
		Activity      string
		TargetMinutes int
	}

	// QuickButton is a saved (activity, default duration) shortcut.
	QuickButton struct {
		UserID         string
		Activity       string
		DefaultMinutes int
	}
)

// NormalizeActivity maps an activity name to its canonical lookup key.
// Applied everywhere a name keys a bucket, so "Exercise" and "exercise"
// resolve to the same one.
func NormalizeActivity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to the calendar day it falls on in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// AddDays returns the date n days later (negative n goes back).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// Equal reports whether d and other are the same day.
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

// String renders the date as YYYY-MM-DD.
func (d Date) String() string { return d.Format("2006-01-02") }

// WeekStart returns the Monday of the week containing d. All "this week"
// aggregations share this cutoff.
func (d Date) WeekStart() Date {
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDays(-offset)
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUser
	}
	if NormalizeActivity(e.Activity) == "" {
		return ErrEmptyActivity
	}
	if e.Minutes <= 0 {
		return ErrInvalidMinutes
	}
	if e.At.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrValidation)
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrEmptyUser
	}
	if NormalizeActivity(g.Activity) == "" {
		return ErrEmptyActivity
	}
	if g.TargetMinutes <= 0 {
		return ErrInvalidTarget
	}
	return nil
}

func (b QuickButton) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUser
	}
	if NormalizeActivity(b.Activity) == "" {
		return ErrEmptyActivity
	}
	if b.DefaultMinutes <= 0 {
		return ErrInvalidMinutes
	}
	return nil
}
