package core

import (
	"fmt"
	"sort"
)

// ActivityTotal is a per-activity aggregate over some period.
type ActivityTotal struct {
	Activity string
	Minutes  int
	Count    int
}

// DaySummary lists one day's entries in timestamp order plus totals.
type DaySummary struct {
	Date         Date
	Entries      []Entry
	Totals       []ActivityTotal
	TotalMinutes int
}

// WeekSummary aggregates one Monday-start week.
type WeekSummary struct {
	WeekStart Date
	Totals    []ActivityTotal
}

// GoalProgress compares one goal's weekly target with the logged minutes.
// Ratio is logged/target and is not clamped: over-achievement reads > 1.
type GoalProgress struct {
	Activity      string
	TargetMinutes int
	LoggedMinutes int
	Ratio         float64
}

// SummarizeDay builds a DaySummary from entries already ordered by timestamp.
func SummarizeDay(date Date, entries []Entry) DaySummary {
	s := DaySummary{Date: date, Entries: entries}
	s.Totals = TotalsByActivity(entries)
	for _, t := range s.Totals {
		s.TotalMinutes += t.Minutes
	}
	return s
}

// TotalsByActivity sums minutes and occurrence counts per activity,
// sorted by activity name.
func TotalsByActivity(entries []Entry) []ActivityTotal {
	byName := make(map[string]*ActivityTotal)
	for _, e := range entries {
		t, ok := byName[e.Activity]
		if !ok {
			t = &ActivityTotal{Activity: e.Activity}
			byName[e.Activity] = t
		}
		t.Minutes += e.Minutes
		t.Count++
	}
	out := make([]ActivityTotal, 0, len(byName))
	for _, t := range byName {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Activity < out[j].Activity })
	return out
}

// Progress computes goal progress against weekly totals. Goals with no
// logged minutes report zero; activities logged without a goal are omitted
// (this is the goal-centric view).
func Progress(goals []Goal, weekTotals []ActivityTotal) []GoalProgress {
	logged := make(map[string]int, len(weekTotals))
	for _, t := range weekTotals {
		logged[t.Activity] = t.Minutes
	}

	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		p := GoalProgress{
			Activity:      g.Activity,
			TargetMinutes: g.TargetMinutes,
			LoggedMinutes: logged[g.Activity],
		}
		if g.TargetMinutes > 0 {
			p.Ratio = float64(p.LoggedMinutes) / float64(p.TargetMinutes)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Activity < out[j].Activity })
	return out
}

// FormatMinutes renders a minute count as "1h 30m" or "45m".
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
