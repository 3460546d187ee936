package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tempo/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateEntry appends one ledger row. Entries are never updated or deleted;
// duplicate appends intentionally create duplicate rows.
func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry, day core.Date) (core.Entry, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (user_id, activity, minutes, note, logged_at, day)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Activity, e.Minutes, e.Note, e.At.UTC(), day.String())
	if err != nil {
		return core.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", e.ID,
		"user_id", e.UserID,
		"activity", e.Activity,
		"minutes", e.Minutes,
		"day", day.String())

	return e, nil
}

// GetEntry retrieves a single entry by ID together with the day it was
// bucketed into at log time.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.Entry, core.Date, error) {
	var (
		e   core.Entry
		day string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, activity, minutes, note, logged_at, day
		 FROM entries WHERE id = ?`, id).
		Scan(&e.ID, &e.UserID, &e.Activity, &e.Minutes, &e.Note, &e.At, &day)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, core.Date{}, fmt.Errorf("entry %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Entry{}, core.Date{}, fmt.Errorf("get entry: %w", err)
	}

	d, err := core.ParseDate(day)
	if err != nil {
		return core.Entry{}, core.Date{}, err
	}
	return e, d, nil
}

// EntriesForDay returns one day's entries ordered by timestamp ascending.
func (r *SQLiteRepository) EntriesForDay(ctx context.Context, userID string, day core.Date) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, activity, minutes, note, logged_at
		 FROM entries WHERE user_id = ? AND day = ?
		 ORDER BY logged_at ASC, id ASC`,
		userID, day.String())
	if err != nil {
		return nil, fmt.Errorf("entries for day: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// WeekTotals aggregates minutes and counts per activity over
// [weekStart, weekStart+7d). ISO day strings compare lexicographically, so
// the range filter works on the day column directly.
func (r *SQLiteRepository) WeekTotals(ctx context.Context, userID string, weekStart core.Date) ([]core.ActivityTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT activity, SUM(minutes), COUNT(*)
		 FROM entries WHERE user_id = ? AND day >= ? AND day < ?
		 GROUP BY activity ORDER BY activity`,
		userID, weekStart.String(), weekStart.AddDays(7).String())
	if err != nil {
		return nil, fmt.Errorf("week totals: %w", err)
	}
	defer rows.Close()

	var totals []core.ActivityTotal
	for rows.Next() {
		var t core.ActivityTotal
		if err := rows.Scan(&t.Activity, &t.Minutes, &t.Count); err != nil {
			return nil, fmt.Errorf("scan week total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// ActiveDates returns the distinct days the user logged the given activity,
// or any activity when activity is empty.
func (r *SQLiteRepository) ActiveDates(ctx context.Context, userID, activity string) ([]core.Date, error) {
	query := `SELECT DISTINCT day FROM entries WHERE user_id = ?`
	args := []any{userID}
	if activity != "" {
		query += ` AND activity = ?`
		args = append(args, activity)
	}
	query += ` ORDER BY day`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("active dates: %w", err)
	}
	defer rows.Close()

	var dates []core.Date
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan active date: %w", err)
		}
		d, err := core.ParseDate(s)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Activities returns the distinct normalized activity names the user has
// ever logged, ordered by name.
func (r *SQLiteRepository) Activities(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT activity FROM entries WHERE user_id = ? ORDER BY activity`, userID)
	if err != nil {
		return nil, fmt.Errorf("activities: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UpsertGoal overwrites the weekly target for (user, activity).
// Last write wins; serialization is the database's job, not the engine's.
func (r *SQLiteRepository) UpsertGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, activity, target_minutes)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, activity)
		 DO UPDATE SET target_minutes = excluded.target_minutes, updated_at = CURRENT_TIMESTAMP`,
		g.UserID, g.Activity, g.TargetMinutes)
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved",
		"user_id", g.UserID,
		"activity", g.Activity,
		"target_minutes", g.TargetMinutes)

	return nil
}

// GoalsForUser lists the user's goals ordered by activity name.
func (r *SQLiteRepository) GoalsForUser(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, activity, target_minutes FROM goals
		 WHERE user_id = ? ORDER BY activity`, userID)
	if err != nil {
		return nil, fmt.Errorf("goals for user: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		var g core.Goal
		if err := rows.Scan(&g.UserID, &g.Activity, &g.TargetMinutes); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpsertButton overwrites the default minutes for (user, activity). The
// original row id survives the overwrite, which keeps insertion order
// stable in ListButtons.
func (r *SQLiteRepository) UpsertButton(ctx context.Context, b core.QuickButton) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quick_buttons (user_id, activity, default_minutes)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, activity)
		 DO UPDATE SET default_minutes = excluded.default_minutes`,
		b.UserID, b.Activity, b.DefaultMinutes)
	if err != nil {
		return fmt.Errorf("upsert button: %w", err)
	}
	return nil
}

// ListButtons lists the user's quick buttons in insertion order.
func (r *SQLiteRepository) ListButtons(ctx context.Context, userID string) ([]core.QuickButton, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, activity, default_minutes FROM quick_buttons
		 WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list buttons: %w", err)
	}
	defer rows.Close()

	var buttons []core.QuickButton
	for rows.Next() {
		var b core.QuickButton
		if err := rows.Scan(&b.UserID, &b.Activity, &b.DefaultMinutes); err != nil {
			return nil, fmt.Errorf("scan button: %w", err)
		}
		buttons = append(buttons, b)
	}
	return buttons, rows.Err()
}

// GetButton fetches one quick button by its (user, activity) key.
func (r *SQLiteRepository) GetButton(ctx context.Context, userID, activity string) (core.QuickButton, error) {
	var b core.QuickButton
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, activity, default_minutes FROM quick_buttons
		 WHERE user_id = ? AND activity = ?`, userID, activity).
		Scan(&b.UserID, &b.Activity, &b.DefaultMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return core.QuickButton{}, fmt.Errorf("button %q: %w", activity, core.ErrNotFound)
	}
	if err != nil {
		return core.QuickButton{}, fmt.Errorf("get button: %w", err)
	}
	return b, nil
}

// PendingSyncEntry represents minimal data needed for sync queue messages
type PendingSyncEntry struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncEntries returns entries that still need to be mirrored to
// the Google Sheet.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM entries
		 WHERE sync_status = 'pending' ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncEntry
	for rows.Next() {
		var p PendingSyncEntry
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced marks an entry as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE entries SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}

	slog.InfoContext(ctx, "Entry marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an entry as having mirror errors.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE entries SET sync_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}

	slog.WarnContext(ctx, "Entry marked with sync error", "id", id)
	return nil
}

func scanEntries(rows *sql.Rows) ([]core.Entry, error) {
	var entries []core.Entry
	for rows.Next() {
		var e core.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Activity, &e.Minutes, &e.Note, &e.At); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
