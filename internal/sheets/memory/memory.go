package memory

import (
	"context"
	"fmt"
	"sync"

	"tempo/internal/core"
)

// Writer is an in-memory sheet used by the memory backend and in tests.
type Writer struct {
	mu   sync.Mutex
	rows []Row
}

// Row is one mirrored entry.
type Row struct {
	Entry core.Entry
	Day   core.Date
}

func New() *Writer {
	return &Writer{}
}

// Append stores the entry and returns a synthetic row reference.
func (w *Writer) Append(_ context.Context, e core.Entry, day core.Date) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, Row{Entry: e, Day: day})
	return fmt.Sprintf("mem:%d", len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Row(nil), w.rows...)
}
