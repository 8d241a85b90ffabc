package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newHandlerFixture() (*Handler, *mockRepo) {
	r, repo := newTestRecorder()
	return NewHandler(r), repo
}

func TestRecent_DefaultLimit(t *testing.T) {
	h, repo := newHandlerFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/recent", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Recent(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != DefaultRecentLimit {
		t.Errorf("expected default limit %d, got %d", DefaultRecentLimit, repo.lastLimit)
	}
}

func TestRecent_OversizedLimitFallsBack(t *testing.T) {
	h, repo := newHandlerFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/recent?limit=150", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Recent(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != DefaultRecentLimit {
		t.Errorf("expected fallback to %d for an oversized limit, got %d", DefaultRecentLimit, repo.lastLimit)
	}
}

func TestRecent_NonNumericLimitFallsBack(t *testing.T) {
	h, repo := newHandlerFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/recent?limit=lots", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Recent(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != DefaultRecentLimit {
		t.Errorf("expected fallback to %d for a non-numeric limit, got %d", DefaultRecentLimit, repo.lastLimit)
	}
}

func TestRecent_EmptyIsJSONArray(t *testing.T) {
	h, _ := newHandlerFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/recent", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Recent(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestByAction_RequiresAction(t *testing.T) {
	h, _ := newHandlerFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/by-action", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ByAction(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing action, got %v", err)
	}
}

func TestByAction_FiltersEntries(t *testing.T) {
	h, repo := newHandlerFixture()
	repo.entries = []*Entry{
		{Action: "search", Actor: "system", Recorded: time.Now()},
		{Action: "favorite-added", Actor: "dr-smith", Recorded: time.Now()},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/by-action?action=search", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ByAction(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body []*Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body) != 1 || body[0].Action != "search" {
		t.Errorf("expected only search entries, got %+v", body)
	}
}

func TestByDates_Envelope(t *testing.T) {
	h, repo := newHandlerFixture()
	repo.entries = []*Entry{
		{Action: "search", Actor: "system", Recorded: time.Now()},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/audit/by-dates?start=2026-01-01&end=2026-01-31", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ByDates(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["count"] != float64(1) {
		t.Errorf("expected count 1, got %v", body["count"])
	}
	if _, ok := body["from"]; !ok {
		t.Error("expected 'from' in envelope")
	}
	if _, ok := body["to"]; !ok {
		t.Error("expected 'to' in envelope")
	}
	if _, ok := body["entries"]; !ok {
		t.Error("expected 'entries' in envelope")
	}

	if !strings.HasPrefix(body["from"].(string), "2026-01-01") {
		t.Errorf("expected from to echo the requested start, got %v", body["from"])
	}
}

func TestByDates_UnparsableStartDegradesToDefaultWindow(t *testing.T) {
	h, repo := newHandlerFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/by-dates?start=garbage", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ByDates(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for an unparsable start, got %d", rec.Code)
	}
	wantStart := time.Now().UTC().Add(-defaultLookback)
	if diff := repo.lastStart.Sub(wantStart); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expected start near seven days ago, got %v", repo.lastStart)
	}
}

func TestByDates_UnparsableEndIsOpenEnded(t *testing.T) {
	h, repo := newHandlerFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/audit/by-dates?start=2026-01-01&end=whenever", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ByDates(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for an unparsable end, got %d", rec.Code)
	}
	if repo.lastEnd != nil {
		t.Errorf("expected an open-ended query for an unparsable end, got %v", repo.lastEnd)
	}
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !repo.lastStart.Equal(want) {
		t.Errorf("expected the parsable start to be honored, got %v", repo.lastStart)
	}
}

func TestByDates_OmittedBoundsDefaultWindow(t *testing.T) {
	h, repo := newHandlerFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/by-dates", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ByDates(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.lastEnd != nil {
		t.Error("expected an open-ended query when end is omitted")
	}
	wantStart := time.Now().UTC().Add(-defaultLookback)
	if diff := repo.lastStart.Sub(wantStart); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expected start near seven days ago, got %v", repo.lastStart)
	}
}

func TestParseTimeParam(t *testing.T) {
	if v := parseTimeParam(""); v != nil {
		t.Errorf("expected nil for empty input, got %v", v)
	}
	if v := parseTimeParam("2026-01-15"); v == nil || v.Day() != 15 {
		t.Errorf("expected bare date accepted, got %v", v)
	}
	if v := parseTimeParam("2026-01-15T10:30:00Z"); v == nil || v.Hour() != 10 {
		t.Errorf("expected RFC 3339 accepted, got %v", v)
	}
	if v := parseTimeParam("next tuesday"); v != nil {
		t.Errorf("expected nil for unparsable input, got %v", v)
	}
}
