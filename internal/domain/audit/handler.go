package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Recorder
}

func NewHandler(svc *Recorder) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit/recent", h.Recent)
	api.GET("/audit/by-action", h.ByAction)
	api.GET("/audit/by-dates", h.ByDates)
}

// Recent lists the newest entries. A limit that is absent, unparsable, or
// out of range degrades to the service default rather than failing.
func (h *Handler) Recent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.svc.RecentEntries(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) ByAction(c echo.Context) error {
	action := c.QueryParam("action")
	if action == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'action' is required")
	}

	entries, err := h.svc.EntriesByAction(c.Request().Context(), action)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// ByDates reports the entries recorded inside a window. The "to" field in
// the response is display-only: when no end was supplied the query itself
// is open-ended and "to" just shows the time of the request. Bounds that
// are absent or unparsable degrade to the defaults rather than failing.
func (h *Handler) ByDates(c echo.Context) error {
	start := parseTimeParam(c.QueryParam("start"))
	end := parseTimeParam(c.QueryParam("end"))

	entries, from, err := h.svc.EntriesByDateRange(c.Request().Context(), start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*Entry{}
	}

	to := time.Now().UTC()
	if end != nil {
		to = *end
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"from":    from,
		"to":      to,
		"count":   len(entries),
		"entries": entries,
	})
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates. Empty and
// unparsable values are both treated as an absent bound.
func parseTimeParam(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}
