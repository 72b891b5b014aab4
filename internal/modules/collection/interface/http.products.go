package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"storeAdminWs/internal/modules/collection/domain"
	syncdomain "storeAdminWs/internal/modules/sync/domain"
)

func (h *AdminHandler) listProducts(c echo.Context) error {
	query := parseListQuery(c)
	page, err := h.client.FetchProducts(c.Request().Context(), query)
	if err != nil {
		slog.Warn("admin products list failed", slog.Int("page", query.Page), slog.Any("error", err))
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) getProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	product, err := h.client.GetProduct(c.Request().Context(), id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *AdminHandler) listCategories(c echo.Context) error {
	categories, err := h.client.FetchCategories(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *AdminHandler) createProduct(c echo.Context) error {
	var payload domain.Product
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	result := h.client.CreateProduct(c.Request().Context(), payload)
	if result.Success {
		h.bus.Publish(c.Request().Context(), syncdomain.EntityProduct, origin(c))
	}
	return respondMutation(c, result, http.StatusCreated)
}

func (h *AdminHandler) updateProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	patch := map[string]any{}
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	result := h.client.UpdateProduct(c.Request().Context(), id, patch)
	if result.Success {
		h.bus.Publish(c.Request().Context(), syncdomain.EntityProduct, origin(c))
	}
	return respondMutation(c, result, 0)
}

func (h *AdminHandler) deleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	result := h.client.DeleteProduct(c.Request().Context(), id)
	if result.Success {
		h.bus.Publish(c.Request().Context(), syncdomain.EntityProduct, origin(c))
	}
	return respondMutation(c, result, 0)
}
