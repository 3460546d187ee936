package services

import (
	"context"

	"tempo/internal/core"
)

// Store is the persistence port the tracker service drives. Both the SQLite
// and the in-memory repositories satisfy it.
type Store interface {
	CreateEntry(ctx context.Context, e core.Entry, day core.Date) (core.Entry, error)
	EntriesForDay(ctx context.Context, userID string, day core.Date) ([]core.Entry, error)
	WeekTotals(ctx context.Context, userID string, weekStart core.Date) ([]core.ActivityTotal, error)
	ActiveDates(ctx context.Context, userID, activity string) ([]core.Date, error)
	Activities(ctx context.Context, userID string) ([]string, error)

	UpsertGoal(ctx context.Context, g core.Goal) error
	GoalsForUser(ctx context.Context, userID string) ([]core.Goal, error)

	UpsertButton(ctx context.Context, b core.QuickButton) error
	ListButtons(ctx context.Context, userID string) ([]core.QuickButton, error)
	GetButton(ctx context.Context, userID, activity string) (core.QuickButton, error)

	Close() error
}

// SyncPublisher pushes mirror messages for freshly created entries.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, id, version int64) error
	Close() error
}
