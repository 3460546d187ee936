package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tempo/internal/core"
)

// MemoryRepository is an in-process store with the same semantics as the
// SQLite repository. Used by the memory backend and in tests.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []memoryEntry
	goals   map[string]map[string]core.Goal // user -> activity -> goal
	buttons map[string][]core.QuickButton   // user -> buttons in insertion order
}

type memoryEntry struct {
	entry core.Entry
	day   core.Date
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:  1,
		goals:   make(map[string]map[string]core.Goal),
		buttons: make(map[string][]core.QuickButton),
	}
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) CreateEntry(_ context.Context, e core.Entry, day core.Date) (core.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, memoryEntry{entry: e, day: day})
	return e, nil
}

func (r *MemoryRepository) GetEntry(_ context.Context, id int64) (core.Entry, core.Date, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, me := range r.entries {
		if me.entry.ID == id {
			return me.entry, me.day, nil
		}
	}
	return core.Entry{}, core.Date{}, fmt.Errorf("entry %d: %w", id, core.ErrNotFound)
}

func (r *MemoryRepository) EntriesForDay(_ context.Context, userID string, day core.Date) ([]core.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.Entry
	for _, me := range r.entries {
		if me.entry.UserID == userID && me.day.Equal(day) {
			out = append(out, me.entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func (r *MemoryRepository) WeekTotals(_ context.Context, userID string, weekStart core.Date) ([]core.ActivityTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	weekEnd := weekStart.AddDays(7)
	byActivity := map[string]*core.ActivityTotal{}
	for _, me := range r.entries {
		if me.entry.UserID != userID {
			continue
		}
		if me.day.Before(weekStart) || !me.day.Before(weekEnd) {
			continue
		}
		t, ok := byActivity[me.entry.Activity]
		if !ok {
			t = &core.ActivityTotal{Activity: me.entry.Activity}
			byActivity[me.entry.Activity] = t
		}
		t.Minutes += me.entry.Minutes
		t.Count++
	}

	totals := make([]core.ActivityTotal, 0, len(byActivity))
	for _, t := range byActivity {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Activity < totals[j].Activity })
	return totals, nil
}

func (r *MemoryRepository) ActiveDates(_ context.Context, userID, activity string) ([]core.Date, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]core.Date{}
	for _, me := range r.entries {
		if me.entry.UserID != userID {
			continue
		}
		if activity != "" && me.entry.Activity != activity {
			continue
		}
		seen[me.day.String()] = me.day
	}

	dates := make([]core.Date, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (r *MemoryRepository) Activities(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]struct{}{}
	var names []string
	for _, me := range r.entries {
		if me.entry.UserID != userID {
			continue
		}
		if _, ok := seen[me.entry.Activity]; ok {
			continue
		}
		seen[me.entry.Activity] = struct{}{}
		names = append(names, me.entry.Activity)
	}
	sort.Strings(names)
	return names, nil
}

func (r *MemoryRepository) UpsertGoal(_ context.Context, g core.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byActivity, ok := r.goals[g.UserID]
	if !ok {
		byActivity = make(map[string]core.Goal)
		r.goals[g.UserID] = byActivity
	}
	byActivity[g.Activity] = g
	return nil
}

func (r *MemoryRepository) GoalsForUser(_ context.Context, userID string) ([]core.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byActivity := r.goals[userID]
	goals := make([]core.Goal, 0, len(byActivity))
	for _, g := range byActivity {
		goals = append(goals, g)
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].Activity < goals[j].Activity })
	return goals, nil
}

func (r *MemoryRepository) UpsertButton(_ context.Context, b core.QuickButton) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.buttons[b.UserID] {
		if existing.Activity == b.Activity {
			r.buttons[b.UserID][i] = b
			return nil
		}
	}
	r.buttons[b.UserID] = append(r.buttons[b.UserID], b)
	return nil
}

func (r *MemoryRepository) ListButtons(_ context.Context, userID string) ([]core.QuickButton, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]core.QuickButton(nil), r.buttons[userID]...), nil
}

func (r *MemoryRepository) GetButton(_ context.Context, userID, activity string) (core.QuickButton, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.buttons[userID] {
		if b.Activity == activity {
			return b, nil
		}
	}
	return core.QuickButton{}, fmt.Errorf("button %q: %w", activity, core.ErrNotFound)
}
