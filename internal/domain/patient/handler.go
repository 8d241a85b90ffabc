package patient

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebook/carebook/internal/platform/fhir"
	"github.com/carebook/carebook/internal/platform/middleware"
	"github.com/carebook/carebook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/search", h.SearchPatients)
	api.GET("/patients/favorites", h.ListFavorites)
	api.POST("/patients/favorites", h.AddFavorite)
	api.DELETE("/patients/favorites", h.ClearFavorites)
	api.DELETE("/patients/favorites/:id", h.RemoveFavorite)
}

// ListPatients pages through the locally persisted registry, independent of
// any owner's favorites.
func (h *Handler) ListPatients(c echo.Context) error {
	p := pagination.FromContext(c)

	patients, total, err := h.svc.ListPatients(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, p.Limit, p.Offset))
}

// SearchPatients validates the query before the core sees it: the name is
// required and must be at least two characters. The lookup itself cannot
// fail — a degraded registry produces an empty result set.
func (h *Handler) SearchPatients(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'name' is required")
	}
	if len(name) < 2 {
		return echo.NewHTTPError(http.StatusBadRequest, "search name must be at least two characters")
	}

	ctx := c.Request().Context()
	results := h.svc.SearchPatients(ctx, name, middleware.ActorFromContext(ctx))
	return c.JSON(http.StatusOK, results)
}

func (h *Handler) ListFavorites(c echo.Context) error {
	ctx := c.Request().Context()
	patients, err := h.svc.ListFavorites(ctx, middleware.ActorFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) AddFavorite(c echo.Context) error {
	var rec fhir.SimplifiedPatient
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if rec.ExternalID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "external id is required")
	}

	ctx := c.Request().Context()
	result, err := h.svc.AddFavorite(ctx, rec, middleware.ActorFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if result.AlreadyFavorite {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message":    "patient already in favorites",
			"patient_id": result.Patient.ID,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "favorite added",
		"patient_id": result.Patient.ID,
	})
}

func (h *Handler) RemoveFavorite(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	removed, err := h.svc.RemoveFavorite(ctx, id, middleware.ActorFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !removed {
		return c.JSON(http.StatusOK, map[string]string{"message": "no favorite to remove"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "favorite removed"})
}

func (h *Handler) ClearFavorites(c echo.Context) error {
	ctx := c.Request().Context()
	removed, err := h.svc.ClearFavorites(ctx, middleware.ActorFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if removed == 0 {
		return c.JSON(http.StatusOK, map[string]string{"message": "no favorites to clear"})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d favorites removed", removed),
	})
}
