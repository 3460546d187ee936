package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tempo/internal/core"
	"tempo/internal/storage"
)

type fakePublisher struct {
	published []int64
	err       error
}

func (f *fakePublisher) PublishEntrySync(_ context.Context, id, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

// Friday morning, fixed so week and day boundaries are deterministic.
var testNow = time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*TrackerService, *fakePublisher) {
	t.Helper()
	publisher := &fakePublisher{}
	svc := NewTrackerService(storage.NewMemoryRepository(), publisher, time.UTC)
	svc.now = func() time.Time { return testNow }
	return svc, publisher
}

func TestTrackerService_LogText(t *testing.T) {
	svc, publisher := newTestService(t)
	ctx := context.Background()

	result, err := svc.LogText(ctx, "42", "Exercise 30m morning run")
	if err != nil {
		t.Fatalf("LogText() error = %v", err)
	}

	if result.Entry.ID == 0 {
		t.Error("LogText() should assign an entry ID")
	}
	if result.Entry.Activity != "exercise" {
		t.Errorf("Activity = %q, want exercise", result.Entry.Activity)
	}
	if result.Entry.Minutes != 30 {
		t.Errorf("Minutes = %d, want 30", result.Entry.Minutes)
	}
	if result.Entry.Note != "morning run" {
		t.Errorf("Note = %q, want %q", result.Entry.Note, "morning run")
	}
	if result.Day.String() != "2025-06-20" {
		t.Errorf("Day = %s, want 2025-06-20", result.Day)
	}
	if result.Progress != nil {
		t.Errorf("Progress = %+v, want nil without a goal", result.Progress)
	}
	if len(publisher.published) != 1 || publisher.published[0] != result.Entry.ID {
		t.Errorf("published IDs = %v, want [%d]", publisher.published, result.Entry.ID)
	}
}

func TestTrackerService_LogText_ReportsGoalProgress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetGoal(ctx, core.Goal{UserID: "42", Activity: "exercise", TargetMinutes: 150}); err != nil {
		t.Fatalf("SetGoal() error = %v", err)
	}
	if _, err := svc.LogText(ctx, "42", "exercise 45m"); err != nil {
		t.Fatalf("LogText() error = %v", err)
	}

	result, err := svc.LogText(ctx, "42", "exercise 30m")
	if err != nil {
		t.Fatalf("LogText() error = %v", err)
	}

	if result.Progress == nil {
		t.Fatal("Progress should be reported when a goal covers the activity")
	}
	if result.Progress.LoggedMinutes != 75 {
		t.Errorf("LoggedMinutes = %d, want 75", result.Progress.LoggedMinutes)
	}
	if result.Progress.Ratio != 0.5 {
		t.Errorf("Ratio = %v, want 0.5", result.Progress.Ratio)
	}
}

func TestTrackerService_LogText_Errors(t *testing.T) {
	svc, publisher := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  string
		text    string
		wantErr error
	}{
		{"empty user", "", "exercise 30m", core.ErrEmptyUser},
		{"no duration", "42", "exercise lots of it", core.ErrNoDuration},
		{"empty text", "42", "   ", core.ErrEmptyActivity},
		{"bad duration classified as parse error", "42", "exercise 1.5h", core.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.LogText(ctx, tt.userID, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LogText() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(publisher.published) != 0 {
		t.Errorf("failed logs must not publish sync messages, got %v", publisher.published)
	}
}

func TestTrackerService_LogButton(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.AddButton(ctx, core.QuickButton{UserID: "42", Activity: "Meditation", DefaultMinutes: 15}); err != nil {
		t.Fatalf("AddButton() error = %v", err)
	}

	result, err := svc.LogButton(ctx, "42", "meditation")
	if err != nil {
		t.Fatalf("LogButton() error = %v", err)
	}

	if result.Entry.Activity != "meditation" {
		t.Errorf("Activity = %q, want meditation", result.Entry.Activity)
	}
	if result.Entry.Minutes != 15 {
		t.Errorf("Minutes = %d, want 15", result.Entry.Minutes)
	}
	if result.Entry.Note != "" {
		t.Errorf("Note = %q, want empty", result.Entry.Note)
	}
}

func TestTrackerService_LogButton_Unknown(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.LogButton(context.Background(), "42", "yoga")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("LogButton() error = %v, want ErrNotFound", err)
	}
}

func TestTrackerService_Today(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, line := range []string{"exercise 30m", "reading 1 hour", "exercise 45m"} {
		if _, err := svc.LogText(ctx, "42", line); err != nil {
			t.Fatalf("LogText(%q) error = %v", line, err)
		}
	}

	summary, err := svc.Today(ctx, "42")
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}

	if summary.Date.String() != "2025-06-20" {
		t.Errorf("Date = %s, want 2025-06-20", summary.Date)
	}
	if len(summary.Entries) != 3 {
		t.Errorf("Entries = %d, want 3", len(summary.Entries))
	}
	if summary.TotalMinutes != 135 {
		t.Errorf("TotalMinutes = %d, want 135", summary.TotalMinutes)
	}
}

func TestTrackerService_Week(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Log on Wednesday, Thursday and Friday of the same week.
	days := []time.Time{
		time.Date(2025, 6, 18, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 19, 8, 0, 0, 0, time.UTC),
		testNow,
	}
	for _, day := range days {
		svc.now = func() time.Time { return day }
		if _, err := svc.LogText(ctx, "42", "exercise 30m"); err != nil {
			t.Fatalf("LogText() error = %v", err)
		}
	}
	svc.now = func() time.Time { return testNow }

	report, err := svc.Week(ctx, "42")
	if err != nil {
		t.Fatalf("Week() error = %v", err)
	}

	if report.WeekStart.String() != "2025-06-16" {
		t.Errorf("WeekStart = %s, want 2025-06-16", report.WeekStart)
	}
	if report.TotalMinutes != 90 {
		t.Errorf("TotalMinutes = %d, want 90", report.TotalMinutes)
	}
	if len(report.Totals) != 1 || report.Totals[0].Count != 3 {
		t.Errorf("Totals = %+v, want one activity with count 3", report.Totals)
	}
	if len(report.Streaks) != 1 {
		t.Fatalf("Streaks = %d, want 1", len(report.Streaks))
	}
	if report.Streaks[0].Current != 3 {
		t.Errorf("Current streak = %d, want 3", report.Streaks[0].Current)
	}
}

func TestTrackerService_SetGoal_Normalizes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetGoal(ctx, core.Goal{UserID: "42", Activity: "  Reading ", TargetMinutes: 120}); err != nil {
		t.Fatalf("SetGoal() error = %v", err)
	}
	if _, err := svc.LogText(ctx, "42", "reading 1h"); err != nil {
		t.Fatalf("LogText() error = %v", err)
	}

	progress, err := svc.GoalProgress(ctx, "42")
	if err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("GoalProgress() returned %d goals, want 1", len(progress))
	}
	if progress[0].Activity != "reading" {
		t.Errorf("Activity = %q, want reading", progress[0].Activity)
	}
	if progress[0].Ratio != 0.5 {
		t.Errorf("Ratio = %v, want 0.5", progress[0].Ratio)
	}
}

func TestTrackerService_SetGoal_Invalid(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.SetGoal(context.Background(), core.Goal{UserID: "42", Activity: "reading", TargetMinutes: 0})
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("SetGoal() error = %v, want ErrValidation", err)
	}
}

func TestTrackerService_Streaks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Exercise on Thursday and Friday, reading only on Wednesday.
	fixtures := []struct {
		at   time.Time
		line string
	}{
		{time.Date(2025, 6, 18, 8, 0, 0, 0, time.UTC), "reading 30m"},
		{time.Date(2025, 6, 19, 8, 0, 0, 0, time.UTC), "exercise 30m"},
		{testNow, "exercise 30m"},
	}
	for _, f := range fixtures {
		at := f.at
		svc.now = func() time.Time { return at }
		if _, err := svc.LogText(ctx, "42", f.line); err != nil {
			t.Fatalf("LogText(%q) error = %v", f.line, err)
		}
	}
	svc.now = func() time.Time { return testNow }

	streaks, err := svc.Streaks(ctx, "42")
	if err != nil {
		t.Fatalf("Streaks() error = %v", err)
	}

	// Overall first, then per-activity sorted by name.
	if len(streaks) != 3 {
		t.Fatalf("Streaks() returned %d streaks, want 3", len(streaks))
	}
	if streaks[0].Activity != "" || streaks[0].Current != 3 {
		t.Errorf("overall streak = %+v, want current 3", streaks[0])
	}
	if streaks[1].Activity != "exercise" || streaks[1].Current != 2 {
		t.Errorf("exercise streak = %+v, want current 2", streaks[1])
	}
	if streaks[2].Activity != "reading" || streaks[2].Current != 0 {
		t.Errorf("reading streak = %+v, want current 0", streaks[2])
	}
}

func TestTrackerService_ListButtons_InsertionOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, b := range []core.QuickButton{
		{UserID: "42", Activity: "exercise", DefaultMinutes: 30},
		{UserID: "42", Activity: "meditation", DefaultMinutes: 15},
		{UserID: "42", Activity: "reading", DefaultMinutes: 60},
	} {
		if err := svc.AddButton(ctx, b); err != nil {
			t.Fatalf("AddButton() error = %v", err)
		}
	}

	// Overwriting keeps the original position.
	if err := svc.AddButton(ctx, core.QuickButton{UserID: "42", Activity: "exercise", DefaultMinutes: 45}); err != nil {
		t.Fatalf("AddButton() error = %v", err)
	}

	buttons, err := svc.ListButtons(ctx, "42")
	if err != nil {
		t.Fatalf("ListButtons() error = %v", err)
	}

	want := []struct {
		activity string
		minutes  int
	}{
		{"exercise", 45},
		{"meditation", 15},
		{"reading", 60},
	}
	if len(buttons) != len(want) {
		t.Fatalf("ListButtons() returned %d buttons, want %d", len(buttons), len(want))
	}
	for i, w := range want {
		if buttons[i].Activity != w.activity || buttons[i].DefaultMinutes != w.minutes {
			t.Errorf("button[%d] = %+v, want %s/%d", i, buttons[i], w.activity, w.minutes)
		}
	}
}

func TestTrackerService_PublishFailureDoesNotFailLog(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewTrackerService(storage.NewMemoryRepository(), publisher, time.UTC)
	svc.now = func() time.Time { return testNow }

	result, err := svc.LogText(context.Background(), "42", "exercise 30m")
	if err != nil {
		t.Fatalf("LogText() error = %v, entry should be saved even if publish fails", err)
	}
	if result.Entry.ID == 0 {
		t.Error("entry should still be persisted")
	}
}
