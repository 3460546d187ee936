package core

import "testing"

func TestComputeStreak(t *testing.T) {
	asOf := NewDate(2025, 6, 20)
	day := func(offset int) Date { return asOf.AddDays(offset) }

	cases := []struct {
		name    string
		dates   []Date
		current int
		longest int
	}{
		{
			name:    "no dates",
			dates:   nil,
			current: 0,
			longest: 0,
		},
		{
			name:    "active today only",
			dates:   []Date{day(0)},
			current: 1,
			longest: 1,
		},
		{
			name:    "active yesterday keeps the streak alive",
			dates:   []Date{day(-3), day(-2), day(-1)},
			current: 3,
			longest: 3,
		},
		{
			name:    "run reaching today",
			dates:   []Date{day(-2), day(-1), day(0)},
			current: 3,
			longest: 3,
		},
		{
			name:    "gap breaks the current streak",
			dates:   []Date{day(-5), day(-3)},
			current: 0,
			longest: 1,
		},
		{
			name:    "old long run, fresh short run",
			dates:   []Date{day(-10), day(-9), day(-8), day(-7), day(-1), day(0)},
			current: 2,
			longest: 4,
		},
		{
			name:    "last active two days ago is broken",
			dates:   []Date{day(-4), day(-3), day(-2)},
			current: 0,
			longest: 3,
		},
		{
			name:    "duplicate dates count once",
			dates:   []Date{day(-1), day(-1), day(0), day(0)},
			current: 2,
			longest: 2,
		},
		{
			name:    "unsorted input",
			dates:   []Date{day(0), day(-2), day(-1)},
			current: 3,
			longest: 3,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeStreak(tc.dates, asOf)
			if got.Current != tc.current {
				t.Errorf("Current = %d, want %d", got.Current, tc.current)
			}
			if got.Longest != tc.longest {
				t.Errorf("Longest = %d, want %d", got.Longest, tc.longest)
			}
		})
	}
}

func TestComputeStreakLastActive(t *testing.T) {
	asOf := NewDate(2025, 6, 20)
	st := ComputeStreak([]Date{asOf.AddDays(-3), asOf.AddDays(-1)}, asOf)
	if !st.LastActive.Equal(asOf.AddDays(-1)) {
		t.Fatalf("LastActive = %s, want %s", st.LastActive, asOf.AddDays(-1))
	}
}

func TestComputeStreakAcrossMonthBoundary(t *testing.T) {
	// May 30, May 31, June 1 is a run of three.
	st := ComputeStreak([]Date{
		NewDate(2025, 5, 30),
		NewDate(2025, 5, 31),
		NewDate(2025, 6, 1),
	}, NewDate(2025, 6, 1))
	if st.Current != 3 || st.Longest != 3 {
		t.Fatalf("got current=%d longest=%d, want 3/3", st.Current, st.Longest)
	}
}
