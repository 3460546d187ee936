package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tempo/internal/core"
)

// TrackerService orchestrates activity tracking across the store and AMQP
type TrackerService struct {
	store     Store
	publisher SyncPublisher
	loc       *time.Location

	// now is swapped in tests for deterministic days.
	now func() time.Time
}

func NewTrackerService(store Store, publisher SyncPublisher, loc *time.Location) *TrackerService {
	if loc == nil {
		loc = time.UTC
	}
	return &TrackerService{
		store:     store,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

// LogResult is what a successful log operation reports back.
type LogResult struct {
	Entry    core.Entry
	Day      core.Date
	Progress *core.GoalProgress // nil when no goal covers the activity
}

// WeekReport is the current week's totals plus the live streaks for the
// activities seen that week.
type WeekReport struct {
	WeekStart    core.Date
	Totals       []core.ActivityTotal
	TotalMinutes int
	Streaks      []core.Streak
}

// LogText parses a raw log line and appends the resulting entry.
func (s *TrackerService) LogText(ctx context.Context, userID, text string) (LogResult, error) {
	if strings.TrimSpace(userID) == "" {
		return LogResult{}, core.ErrEmptyUser
	}

	parsed, err := core.ParseEntry(text)
	if err != nil {
		return LogResult{}, err
	}

	return s.appendEntry(ctx, core.Entry{
		UserID:   userID,
		Activity: parsed.Activity,
		Minutes:  parsed.Minutes,
		Note:     parsed.Note,
	})
}

// LogButton logs one tap of a saved quick button. The stored default
// duration is used as-is; the entry parser is not involved.
func (s *TrackerService) LogButton(ctx context.Context, userID, activity string) (LogResult, error) {
	if strings.TrimSpace(userID) == "" {
		return LogResult{}, core.ErrEmptyUser
	}

	button, err := s.store.GetButton(ctx, userID, core.NormalizeActivity(activity))
	if err != nil {
		return LogResult{}, fmt.Errorf("get button: %w", err)
	}

	return s.appendEntry(ctx, core.Entry{
		UserID:   userID,
		Activity: button.Activity,
		Minutes:  button.DefaultMinutes,
	})
}

func (s *TrackerService) appendEntry(ctx context.Context, e core.Entry) (LogResult, error) {
	e.At = s.now()
	if err := e.Validate(); err != nil {
		return LogResult{}, err
	}

	day := core.DateOf(e.At, s.loc)

	saved, err := s.store.CreateEntry(ctx, e, day)
	if err != nil {
		return LogResult{}, fmt.Errorf("save entry: %w", err)
	}

	// Publish async sync message (non-blocking, version 1 for new entry)
	if err := s.publishSyncMessage(ctx, saved.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", saved.ID, "error", err)
		// Don't fail the request, the entry is saved locally
	}

	result := LogResult{Entry: saved, Day: day}

	// Best effort: report goal progress for the logged activity so the
	// caller can show it right away.
	progress, err := s.goalProgressFor(ctx, saved.UserID, saved.Activity, day)
	if err != nil {
		slog.WarnContext(ctx, "Failed to compute goal progress",
			"user_id", saved.UserID, "activity", saved.Activity, "error", err)
		return result, nil
	}
	result.Progress = progress

	return result, nil
}

func (s *TrackerService) goalProgressFor(ctx context.Context, userID, activity string, day core.Date) (*core.GoalProgress, error) {
	goals, err := s.store.GoalsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}

	var goal *core.Goal
	for i := range goals {
		if goals[i].Activity == activity {
			goal = &goals[i]
			break
		}
	}
	if goal == nil {
		return nil, nil
	}

	totals, err := s.store.WeekTotals(ctx, userID, day.WeekStart())
	if err != nil {
		return nil, fmt.Errorf("load week totals: %w", err)
	}

	for _, p := range core.Progress([]core.Goal{*goal}, totals) {
		if p.Activity == activity {
			return &p, nil
		}
	}
	return nil, nil
}

// Today summarizes the current day's entries.
func (s *TrackerService) Today(ctx context.Context, userID string) (core.DaySummary, error) {
	day := core.DateOf(s.now(), s.loc)

	entries, err := s.store.EntriesForDay(ctx, userID, day)
	if err != nil {
		return core.DaySummary{}, fmt.Errorf("load entries: %w", err)
	}

	return core.SummarizeDay(day, entries), nil
}

// Week reports the current Monday-start week's totals and the streaks of
// the activities logged in it.
func (s *TrackerService) Week(ctx context.Context, userID string) (WeekReport, error) {
	today := core.DateOf(s.now(), s.loc)
	weekStart := today.WeekStart()

	totals, err := s.store.WeekTotals(ctx, userID, weekStart)
	if err != nil {
		return WeekReport{}, fmt.Errorf("load week totals: %w", err)
	}

	report := WeekReport{WeekStart: weekStart, Totals: totals}
	for _, t := range totals {
		report.TotalMinutes += t.Minutes
	}

	for _, t := range totals {
		streak, err := s.streakFor(ctx, userID, t.Activity, today)
		if err != nil {
			return WeekReport{}, err
		}
		report.Streaks = append(report.Streaks, streak)
	}

	return report, nil
}

// SetGoal saves or overwrites a weekly minute target.
func (s *TrackerService) SetGoal(ctx context.Context, g core.Goal) error {
	g.Activity = core.NormalizeActivity(g.Activity)
	if err := g.Validate(); err != nil {
		return err
	}

	if err := s.store.UpsertGoal(ctx, g); err != nil {
		return fmt.Errorf("save goal: %w", err)
	}
	return nil
}

// GoalProgress reports every goal's progress against the current week.
func (s *TrackerService) GoalProgress(ctx context.Context, userID string) ([]core.GoalProgress, error) {
	goals, err := s.store.GoalsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}

	weekStart := core.DateOf(s.now(), s.loc).WeekStart()
	totals, err := s.store.WeekTotals(ctx, userID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("load week totals: %w", err)
	}

	return core.Progress(goals, totals), nil
}

// Streaks reports the overall streak followed by one streak per activity
// the user has ever logged.
func (s *TrackerService) Streaks(ctx context.Context, userID string) ([]core.Streak, error) {
	today := core.DateOf(s.now(), s.loc)

	overall, err := s.streakFor(ctx, userID, "", today)
	if err != nil {
		return nil, err
	}
	streaks := []core.Streak{overall}

	activities, err := s.store.Activities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	for _, activity := range activities {
		streak, err := s.streakFor(ctx, userID, activity, today)
		if err != nil {
			return nil, err
		}
		streaks = append(streaks, streak)
	}

	return streaks, nil
}

// Streak reports a single streak: one activity's, or the overall streak
// when activity is empty.
func (s *TrackerService) Streak(ctx context.Context, userID, activity string) (core.Streak, error) {
	return s.streakFor(ctx, userID, core.NormalizeActivity(activity), core.DateOf(s.now(), s.loc))
}

func (s *TrackerService) streakFor(ctx context.Context, userID, activity string, asOf core.Date) (core.Streak, error) {
	dates, err := s.store.ActiveDates(ctx, userID, activity)
	if err != nil {
		return core.Streak{}, fmt.Errorf("load active dates: %w", err)
	}

	streak := core.ComputeStreak(dates, asOf)
	streak.Activity = activity
	return streak, nil
}

// AddButton saves or overwrites a quick button.
func (s *TrackerService) AddButton(ctx context.Context, b core.QuickButton) error {
	b.Activity = core.NormalizeActivity(b.Activity)
	if err := b.Validate(); err != nil {
		return err
	}

	if err := s.store.UpsertButton(ctx, b); err != nil {
		return fmt.Errorf("save button: %w", err)
	}
	return nil
}

// ListButtons lists the user's quick buttons in insertion order.
func (s *TrackerService) ListButtons(ctx context.Context, userID string) ([]core.QuickButton, error) {
	buttons, err := s.store.ListButtons(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list buttons: %w", err)
	}
	return buttons, nil
}

func (s *TrackerService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.publisher.PublishEntrySync(ctx, id, version)
}

// Close closes both the store and the AMQP connection
func (s *TrackerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close tracker service: %v", errs)
	}

	return nil
}
