package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock Repository --

type mockRepo struct {
	entries   []*Entry
	insertErr error

	lastLimit int
	lastStart time.Time
	lastEnd   *time.Time
}

func (m *mockRepo) Insert(_ context.Context, e *Entry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	e.ID = uuid.New()
	e.Recorded = time.Now()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepo) Recent(_ context.Context, limit int) ([]*Entry, error) {
	m.lastLimit = limit
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

func (m *mockRepo) ByAction(_ context.Context, action string, limit int) ([]*Entry, error) {
	m.lastLimit = limit
	var result []*Entry
	for _, e := range m.entries {
		if e.Action == action {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockRepo) ByDateRange(_ context.Context, start time.Time, end *time.Time, limit int) ([]*Entry, error) {
	m.lastLimit = limit
	m.lastStart = start
	m.lastEnd = end
	return m.entries, nil
}

func newTestRecorder() (*Recorder, *mockRepo) {
	repo := &mockRepo{}
	return NewRecorder(repo, zerolog.Nop()), repo
}

// -- Tests --

func TestRecord_AppendsEntry(t *testing.T) {
	r, repo := newTestRecorder()
	pid := uuid.New()
	fhirID := "abc123"

	r.Record(context.Background(), "favorite-added", &pid, &fhirID, "dr-smith")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Action != "favorite-added" || e.Actor != "dr-smith" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.PatientID == nil || *e.PatientID != pid {
		t.Error("expected the patient reference to be carried")
	}
	if e.PatientFHIRID == nil || *e.PatientFHIRID != "abc123" {
		t.Error("expected the registry id snapshot to be carried")
	}
	if e.Recorded.IsZero() {
		t.Error("expected a server-assigned timestamp")
	}
}

func TestRecord_SwallowsInsertFailure(t *testing.T) {
	r, repo := newTestRecorder()
	repo.insertErr = fmt.Errorf("connection refused")

	// Must not panic or propagate; the caller's operation goes on.
	r.Record(context.Background(), "search", nil, nil, "system")

	if len(repo.entries) != 0 {
		t.Errorf("expected no entries after a failed insert, got %d", len(repo.entries))
	}
}

func TestRecentEntries_LimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero falls back to default", 0, DefaultRecentLimit},
		{"negative falls back to default", -5, DefaultRecentLimit},
		{"above max falls back to default", 150, DefaultRecentLimit},
		{"in range passes through", 50, 50},
		{"max passes through", 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := newTestRecorder()
			if _, err := r.RecentEntries(context.Background(), tt.limit); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if repo.lastLimit != tt.want {
				t.Errorf("expected limit %d, got %d", tt.want, repo.lastLimit)
			}
		})
	}
}

func TestEntriesByAction_FixedLimit(t *testing.T) {
	r, repo := newTestRecorder()

	if _, err := r.EntriesByAction(context.Background(), "search"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != 50 {
		t.Errorf("expected fixed limit 50, got %d", repo.lastLimit)
	}
}

func TestEntriesByDateRange_DefaultsStartToSevenDaysAgo(t *testing.T) {
	r, repo := newTestRecorder()

	before := time.Now().UTC().Add(-defaultLookback)
	_, from, err := r.EntriesByDateRange(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().UTC().Add(-defaultLookback)

	if from.Before(before) || from.After(after) {
		t.Errorf("expected start near seven days ago, got %v", from)
	}
	if !repo.lastStart.Equal(from) {
		t.Errorf("expected repo queried with resolved start %v, got %v", from, repo.lastStart)
	}
	if repo.lastEnd != nil {
		t.Error("expected an open-ended range when end is absent")
	}
	if repo.lastLimit != 200 {
		t.Errorf("expected limit 200, got %d", repo.lastLimit)
	}
}

func TestEntriesByDateRange_ExplicitBounds(t *testing.T) {
	r, repo := newTestRecorder()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	_, from, err := r.EntriesByDateRange(context.Background(), &start, &end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !from.Equal(start) {
		t.Errorf("expected resolved start %v, got %v", start, from)
	}
	if repo.lastEnd == nil || !repo.lastEnd.Equal(end) {
		t.Errorf("expected end %v, got %v", end, repo.lastEnd)
	}
}
