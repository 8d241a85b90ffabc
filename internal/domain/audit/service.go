package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultRecentLimit applies when a caller-supplied limit is missing
	// or outside (0, MaxRecentLimit].
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100

	actionLimit    = 50
	dateRangeLimit = 200

	// defaultLookback bounds a date-range query whose start is absent.
	defaultLookback = 7 * 24 * time.Hour
)

// Recorder is the append-only writer and read surface over the audit trail.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record appends one entry with a server-assigned timestamp. The append is
// isolated from the operation it documents: a failed insert is logged and
// swallowed, never propagated, so audit trouble cannot fail or roll back
// the business operation that triggered it.
func (r *Recorder) Record(ctx context.Context, action string, patientID *uuid.UUID, patientFHIRID *string, actor string) {
	e := &Entry{
		Action:        action,
		PatientID:     patientID,
		PatientFHIRID: patientFHIRID,
		Actor:         actor,
	}
	if err := r.repo.Insert(ctx, e); err != nil {
		r.logger.Error().Err(err).
			Str("action", action).
			Str("actor", actor).
			Msg("audit append failed")
	}
}

// RecentEntries returns the newest entries. A limit of zero, a negative
// value, or anything above MaxRecentLimit falls back to DefaultRecentLimit.
func (r *Recorder) RecentEntries(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > MaxRecentLimit {
		limit = DefaultRecentLimit
	}
	return r.repo.Recent(ctx, limit)
}

// EntriesByAction returns the newest entries tagged with action.
func (r *Recorder) EntriesByAction(ctx context.Context, action string) ([]*Entry, error) {
	return r.repo.ByAction(ctx, action, actionLimit)
}

// EntriesByDateRange returns entries recorded within [start, end], both
// bounds inclusive. A nil start defaults to seven days before now; a nil
// end leaves the range open-ended. The resolved start is returned so
// callers can report the effective window.
func (r *Recorder) EntriesByDateRange(ctx context.Context, start, end *time.Time) ([]*Entry, time.Time, error) {
	from := time.Now().UTC().Add(-defaultLookback)
	if start != nil {
		from = *start
	}
	entries, err := r.repo.ByDateRange(ctx, from, end, dateRangeLimit)
	return entries, from, err
}
