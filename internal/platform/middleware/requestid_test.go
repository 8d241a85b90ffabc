package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rid := rec.Header().Get(RequestIDHeader)
	if rid == "" {
		t.Fatal("expected a generated request id in the response header")
	}
	if _, err := uuid.Parse(rid); err != nil {
		t.Errorf("expected a uuid request id, got %q", rid)
	}
	if got := c.Get("request_id"); got != rid {
		t.Errorf("expected request id stored on context, got %v", got)
	}
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.Header().Get(RequestIDHeader); got != "caller-supplied-id" {
		t.Errorf("expected the incoming id preserved, got %q", got)
	}
}
