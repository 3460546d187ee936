package core

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeActivity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Exercise", "exercise"},
		{"  reading ", "reading"},
		{"PIANO", "piano"},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := NormalizeActivity(tc.in); got != tc.want {
			t.Errorf("NormalizeActivity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{
		UserID:   "u1",
		Activity: "exercise",
		Minutes:  30,
		At:       time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		name  string
		entry Entry
		want  error
	}{
		{"empty user", Entry{Activity: "a", Minutes: 1, At: good.At}, ErrEmptyUser},
		{"empty activity", Entry{UserID: "u", Activity: "  ", Minutes: 1, At: good.At}, ErrEmptyActivity},
		{"zero minutes", Entry{UserID: "u", Activity: "a", Minutes: 0, At: good.At}, ErrInvalidMinutes},
		{"negative minutes", Entry{UserID: "u", Activity: "a", Minutes: -5, At: good.At}, ErrInvalidMinutes},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.entry.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("error %v should classify as ErrValidation", err)
			}
		})
	}
}

func TestGoalValidate(t *testing.T) {
	if err := (Goal{UserID: "u", Activity: "a", TargetMinutes: 150}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Goal{UserID: "u", Activity: "a", TargetMinutes: 0}).Validate(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestQuickButtonValidate(t *testing.T) {
	if err := (QuickButton{UserID: "u", Activity: "a", DefaultMinutes: 30}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (QuickButton{UserID: "u", Activity: "a", DefaultMinutes: -1}).Validate(); !errors.Is(err, ErrInvalidMinutes) {
		t.Fatalf("expected ErrInvalidMinutes, got %v", err)
	}
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		day  Date
		want Date
	}{
		{NewDate(2025, 6, 16), NewDate(2025, 6, 16)}, // Monday maps to itself
		{NewDate(2025, 6, 18), NewDate(2025, 6, 16)}, // Wednesday
		{NewDate(2025, 6, 22), NewDate(2025, 6, 16)}, // Sunday still belongs to Monday's week
		{NewDate(2025, 6, 23), NewDate(2025, 6, 23)}, // next Monday
	}
	for _, tc := range cases {
		if got := tc.day.WeekStart(); !got.Equal(tc.want) {
			t.Errorf("WeekStart(%s) = %s, want %s", tc.day, got, tc.want)
		}
	}
}

func TestDateOf(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 23:30 UTC on June 20 is already June 21 in Rome.
	instant := time.Date(2025, 6, 20, 23, 30, 0, 0, time.UTC)
	if got := DateOf(instant, rome); !got.Equal(NewDate(2025, 6, 21)) {
		t.Errorf("DateOf in Rome = %s, want 2025-06-21", got)
	}
	if got := DateOf(instant, time.UTC); !got.Equal(NewDate(2025, 6, 20)) {
		t.Errorf("DateOf in UTC = %s, want 2025-06-20", got)
	}
}
