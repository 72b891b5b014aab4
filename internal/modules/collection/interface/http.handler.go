package transport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"storeAdminWs/internal/modules/collection/application/port"
	"storeAdminWs/internal/modules/collection/domain"
	ordersusecase "storeAdminWs/internal/modules/orders/application/usecase"
	syncport "storeAdminWs/internal/modules/sync/application/port"
	"storeAdminWs/internal/shared/httputil"
)

// TabIDHeader carries the originating tab identity on mutating requests so
// the refresh signal skips the tab that caused the change.
const TabIDHeader = "X-Tab-Id"

// AdminHandler serves the admin collection API: paginated lists, id lookups
// and envelope-shaped mutations, publishing refresh signals after every
// successful mutation.
type AdminHandler struct {
	client port.Client
	orders *ordersusecase.EnrichOrdersUseCase
	bus    syncport.Bus
	mapper *httputil.ErrorMapper
}

func NewAdminHandler(client port.Client, orders *ordersusecase.EnrichOrdersUseCase, bus syncport.Bus) *AdminHandler {
	mapper := httputil.NewErrorMapper().
		WithMapping(port.ErrNotFound, http.StatusNotFound, "resource not found").
		WithMapping(port.ErrForbidden, http.StatusUnauthorized, "unauthorized").
		WithMapping(port.ErrUnsupportedEntity, http.StatusNotFound, "unsupported entity").
		WithMapping(port.ErrBackendUnavailable, http.StatusBadGateway, "backend unavailable")
	return &AdminHandler{client: client, orders: orders, bus: bus, mapper: mapper}
}

// Register mounts the admin collection routes on the given group.
func (h *AdminHandler) Register(g *echo.Group) {
	g.GET("/users", h.listUsers)
	g.GET("/users/check-email", h.checkEmail)
	g.GET("/users/:id", h.getUser)
	g.POST("/users", h.createUser)
	g.PATCH("/users/:id", h.updateUser)
	g.DELETE("/users/:id", h.deleteUser)

	g.GET("/products", h.listProducts)
	g.GET("/products/:id", h.getProduct)
	g.POST("/products", h.createProduct)
	g.PATCH("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)

	g.GET("/categories", h.listCategories)

	g.GET("/orders", h.listOrders)
	g.GET("/orders/:id", h.getOrder)
	g.PATCH("/orders/:id", h.updateOrder)
	g.PATCH("/orders/:id/status", h.updateOrderStatus)
}

// parseListQuery maps the request's query string onto a ListQuery. The
// paging parameters keep the backend's underscore names; every other
// non-underscore parameter is treated as an exact-match filter.
func parseListQuery(c echo.Context) domain.ListQuery {
	query := domain.ListQuery{Filters: map[string]string{}}
	for key, values := range c.QueryParams() {
		if len(values) == 0 {
			continue
		}
		value := strings.TrimSpace(values[0])
		switch key {
		case "_page":
			if n, err := strconv.Atoi(value); err == nil {
				query.Page = n
			}
		case "_per_page":
			if n, err := strconv.Atoi(value); err == nil {
				query.PageSize = n
			}
		case "_sort":
			query.SortField = value
		default:
			if strings.HasPrefix(key, "_") || value == "" {
				continue
			}
			query.Filters[key] = value
		}
	}
	return query.Normalize()
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func origin(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(TabIDHeader))
}

func (h *AdminHandler) fail(err error) *echo.HTTPError {
	info := h.mapper.Map(err)
	return echo.NewHTTPError(info.Status, info.Message)
}

// respondMutation writes the envelope as-is. Expected backend failures are
// still HTTP 200 here; clients branch on the success flag, not the status.
func respondMutation[T any](c echo.Context, result domain.Result[T], createdStatus int) error {
	status := http.StatusOK
	if result.Success && createdStatus != 0 {
		status = createdStatus
	}
	return c.JSON(status, result)
}
