package audit

import (
	"context"
	"time"
)

type Repository interface {
	// Insert appends one entry. The recorded timestamp is assigned by the
	// storage engine at write time, not by the caller.
	Insert(ctx context.Context, e *Entry) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
	ByAction(ctx context.Context, action string, limit int) ([]*Entry, error)
	// ByDateRange returns entries with start <= recorded (<= end, when end
	// is non-nil). Both bounds are inclusive.
	ByDateRange(ctx context.Context, start time.Time, end *time.Time, limit int) ([]*Entry, error)
}
