package transport

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"storeAdminWs/internal/modules/collection/domain"
	syncdomain "storeAdminWs/internal/modules/sync/domain"
)

func (h *AdminHandler) listUsers(c echo.Context) error {
	query := parseListQuery(c)
	page, err := h.client.FetchUsers(c.Request().Context(), query)
	if err != nil {
		slog.Warn("admin users list failed", slog.Int("page", query.Page), slog.Any("error", err))
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) getUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.client.GetUser(c.Request().Context(), id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) checkEmail(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing email")
	}
	duplicate, err := h.client.CheckEmailDuplicate(c.Request().Context(), email)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"duplicate": duplicate})
}

func (h *AdminHandler) createUser(c echo.Context) error {
	var payload domain.User
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	result := h.client.CreateUser(c.Request().Context(), payload)
	if result.Success {
		h.bus.Publish(c.Request().Context(), syncdomain.EntityUser, origin(c))
	}
	return respondMutation(c, result, http.StatusCreated)
}

func (h *AdminHandler) updateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	patch := map[string]any{}
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	result := h.client.UpdateUser(c.Request().Context(), id, patch)
	if result.Success {
		h.bus.Publish(c.Request().Context(), syncdomain.EntityUser, origin(c))
	}
	return respondMutation(c, result, 0)
}

func (h *AdminHandler) deleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	result := h.client.DeleteUser(c.Request().Context(), id)
	if result.Success {
		h.bus.Publish(c.Request().Context(), syncdomain.EntityUser, origin(c))
	}
	return respondMutation(c, result, 0)
}
