package sheets

import (
	"context"
	"tempo/internal/core"
)

// Ports for outbound adapters.
type (
	// EntryWriter mirrors a ledger entry to an external sheet. Day is the
	// calendar day the entry was bucketed into at log time.
	EntryWriter interface {
		Append(ctx context.Context, e core.Entry, day core.Date) (rowRef string, err error)
	}
)
