package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storeAdminWs/internal/modules/collection/domain"
	orders "storeAdminWs/internal/modules/orders/domain"
	syncdomain "storeAdminWs/internal/modules/sync/domain"
)

func (h *AdminHandler) listOrders(c echo.Context) error {
	query := parseListQuery(c)
	page, err := h.orders.ListOrders(c.Request().Context(), query)
	if err != nil {
		slog.Warn("admin orders list failed", slog.Int("page", query.Page), slog.Any("error", err))
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) getOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	order, err := h.client.GetOrder(c.Request().Context(), id)
	if err != nil {
		return h.fail(err)
	}
	enriched := h.orders.Enrich(c.Request().Context(), order)
	return c.JSON(http.StatusOK, enriched)
}

type statusChangeRequest struct {
	Status string `json:"status"`
}

// updateOrder proxies an arbitrary order patch. A status field, when
// present, goes through the same transition guard as the dedicated route.
func (h *AdminHandler) updateOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	patch := map[string]any{}
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	if raw, ok := patch["status"]; ok {
		requested := orders.NormalizeStatus(raw)
		current, err := h.client.GetOrder(ctx, id)
		if err != nil {
			return h.fail(err)
		}
		from := orders.NormalizeStatus(string(current.Status))
		if !from.CanAdvanceTo(requested) {
			return respondMutation(c, domain.Fail[orders.Order](
				"illegal status transition from "+string(from)+" to "+string(requested)), 0)
		}
		patch["status"] = string(requested)
	}

	result := h.client.UpdateOrder(ctx, id, patch)
	if result.Success {
		h.bus.Publish(ctx, syncdomain.EntityOrder, origin(c))
	}
	return respondMutation(c, result, 0)
}

// updateOrderStatus moves an order one step along its lifecycle. The current
// state is fetched first; anything other than the immediate successor is
// rejected before the backend is touched.
func (h *AdminHandler) updateOrderStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var payload statusChangeRequest
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	requested := orders.NormalizeStatus(payload.Status)
	if requested == orders.StatusUnknown {
		return echo.NewHTTPError(http.StatusBadRequest, "missing status")
	}

	ctx := c.Request().Context()
	current, err := h.client.GetOrder(ctx, id)
	if err != nil {
		return h.fail(err)
	}

	from := orders.NormalizeStatus(string(current.Status))
	if !from.CanAdvanceTo(requested) {
		slog.Info("order status transition rejected",
			slog.Int64("orderId", id),
			slog.String("from", string(from)),
			slog.String("requested", string(requested)),
		)
		return respondMutation(c, domain.Fail[orders.Order](
			"illegal status transition from "+string(from)+" to "+string(requested)), 0)
	}

	result := h.client.UpdateOrder(ctx, id, map[string]any{
		"status":    string(requested),
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})
	if result.Success {
		h.bus.Publish(ctx, syncdomain.EntityOrder, origin(c))
	}
	return respondMutation(c, result, 0)
}
