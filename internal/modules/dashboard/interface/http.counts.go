package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"storeAdminWs/internal/modules/dashboard/application/usecase"
)

// CountsHandler exposes the dashboard's entity totals.
type CountsHandler struct {
	counts *usecase.CountsUseCase
}

func NewCountsHandler(counts *usecase.CountsUseCase) *CountsHandler {
	return &CountsHandler{counts: counts}
}

func (h *CountsHandler) Register(g *echo.Group) {
	g.GET("/dashboard", h.getCounts)
}

func (h *CountsHandler) getCounts(c echo.Context) error {
	counts, err := h.counts.Execute(c.Request().Context())
	if err != nil {
		slog.Warn("dashboard counts failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusBadGateway, "backend unavailable")
	}
	return c.JSON(http.StatusOK, counts)
}
