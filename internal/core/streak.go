package core

import "sort"

// Streak reports consecutive-day activity for one activity or for all of
// them combined. It is always recomputed from the ledger's active dates,
// never persisted.
type Streak struct {
	Activity   string // empty for the overall streak
	Current    int
	Longest    int
	LastActive Date
}

// ComputeStreak scans a set of active dates for maximal runs of consecutive
// calendar days. A gap of exactly one day continues a run, anything larger
// breaks it.
//
// Current is the length of the run that includes asOf or ends at asOf-1: a
// user active yesterday but not yet today still has a live streak until the
// day fully elapses. If the most recent active date is older than that,
// Current is 0.
func ComputeStreak(dates []Date, asOf Date) Streak {
	if len(dates) == 0 {
		return Streak{}
	}

	sorted := make([]Date, 0, len(dates))
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		if key := d.String(); !seen[key] {
			seen[key] = true
			sorted = append(sorted, d)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	st := Streak{LastActive: sorted[len(sorted)-1]}

	run := 1
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Equal(sorted[i-1].AddDays(1)) {
			run++
			continue
		}
		if run > st.Longest {
			st.Longest = run
		}
		if i < len(sorted) {
			run = 1
		}
	}

	// The final run is live if it reaches asOf or stopped just yesterday.
	last := sorted[len(sorted)-1]
	if last.Equal(asOf) || last.Equal(asOf.AddDays(-1)) {
		st.Current = run
	}

	return st
}
