package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"storeAdminWs/internal/modules/collection/domain"
	ordersusecase "storeAdminWs/internal/modules/orders/application/usecase"
	orders "storeAdminWs/internal/modules/orders/domain"
)

type stubClient struct {
	getOrder    func(ctx context.Context, id int64) (orders.Order, error)
	updateOrder func(ctx context.Context, id int64, patch map[string]any) domain.Result[orders.Order]
	updated     int
}

func (s *stubClient) FetchUsers(ctx context.Context, q domain.ListQuery) (domain.ListResult[domain.User], error) {
	return domain.ListResult[domain.User]{Rows: []domain.User{}}, nil
}

func (s *stubClient) FetchProducts(ctx context.Context, q domain.ListQuery) (domain.ListResult[domain.Product], error) {
	return domain.ListResult[domain.Product]{Rows: []domain.Product{}}, nil
}

func (s *stubClient) FetchOrders(ctx context.Context, q domain.ListQuery) (domain.ListResult[orders.Order], error) {
	return domain.ListResult[orders.Order]{Rows: []orders.Order{}}, nil
}

func (s *stubClient) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	return nil, nil
}

func (s *stubClient) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return domain.User{}, nil
}

func (s *stubClient) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return domain.Product{}, nil
}

func (s *stubClient) GetOrder(ctx context.Context, id int64) (orders.Order, error) {
	if s.getOrder != nil {
		return s.getOrder(ctx, id)
	}
	return orders.Order{}, nil
}

func (s *stubClient) CreateUser(ctx context.Context, data domain.User) domain.Result[domain.User] {
	return domain.Ok(data)
}

func (s *stubClient) UpdateUser(ctx context.Context, id int64, patch map[string]any) domain.Result[domain.User] {
	return domain.Ok(domain.User{ID: id})
}

func (s *stubClient) DeleteUser(ctx context.Context, id int64) domain.Result[struct{}] {
	return domain.Ok(struct{}{})
}

func (s *stubClient) CreateProduct(ctx context.Context, data domain.Product) domain.Result[domain.Product] {
	return domain.Ok(data)
}

func (s *stubClient) UpdateProduct(ctx context.Context, id int64, patch map[string]any) domain.Result[domain.Product] {
	return domain.Ok(domain.Product{ID: id})
}

func (s *stubClient) DeleteProduct(ctx context.Context, id int64) domain.Result[struct{}] {
	return domain.Ok(struct{}{})
}

func (s *stubClient) UpdateOrder(ctx context.Context, id int64, patch map[string]any) domain.Result[orders.Order] {
	s.updated++
	if s.updateOrder != nil {
		return s.updateOrder(ctx, id, patch)
	}
	return domain.Ok(orders.Order{ID: id})
}

func (s *stubClient) CheckEmailDuplicate(ctx context.Context, email string) (bool, error) {
	return false, nil
}

type recordingBus struct {
	published []string
	origins   []string
}

func (b *recordingBus) Publish(ctx context.Context, entity, origin string) {
	b.published = append(b.published, entity)
	b.origins = append(b.origins, origin)
}

func (b *recordingBus) Subscribe(entity, origin string, onRefresh func()) func() {
	return func() {}
}

func newTestHandler(client *stubClient, bus *recordingBus) *AdminHandler {
	enrich := ordersusecase.NewEnrichOrdersUseCase(client, ordersusecase.TotalFromProducts)
	return NewAdminHandler(client, enrich, bus)
}

func TestParseListQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users?_page=3&_per_page=10&_sort=email&role=admin&_extra=skip", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	query := parseListQuery(c)
	if query.Page != 3 || query.PageSize != 10 {
		t.Fatalf("unexpected paging: page=%d size=%d", query.Page, query.PageSize)
	}
	if query.SortField != "email" {
		t.Fatalf("unexpected sort field %q", query.SortField)
	}
	if query.Filters["role"] != "admin" {
		t.Fatalf("expected role filter, got %v", query.Filters)
	}
	if _, ok := query.Filters["_extra"]; ok {
		t.Fatalf("underscore params must not become filters: %v", query.Filters)
	}
}

func TestParseListQueryDefaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	query := parseListQuery(c)
	if query.Page != 1 || query.PageSize != 5 {
		t.Fatalf("expected normalized defaults, got page=%d size=%d", query.Page, query.PageSize)
	}
}

func TestUpdateOrderStatusRejectsIllegalTransition(t *testing.T) {
	client := &stubClient{
		getOrder: func(ctx context.Context, id int64) (orders.Order, error) {
			return orders.Order{ID: id, Status: orders.StatusPending}, nil
		},
	}
	bus := &recordingBus{}
	h := newTestHandler(client, bus)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/orders/7/status", strings.NewReader(`{"status":"shipped"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/orders/:id/status")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.updateOrderStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var result domain.Result[orders.Order]
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Success {
		t.Fatal("expected rejected transition")
	}
	if client.updated != 0 {
		t.Fatalf("backend must not be touched, got %d updates", client.updated)
	}
	if len(bus.published) != 0 {
		t.Fatalf("no refresh signal expected, got %v", bus.published)
	}
}

func TestUpdateOrderStatusAdvancesOneStep(t *testing.T) {
	client := &stubClient{
		getOrder: func(ctx context.Context, id int64) (orders.Order, error) {
			return orders.Order{ID: id, Status: orders.StatusPending}, nil
		},
		updateOrder: func(ctx context.Context, id int64, patch map[string]any) domain.Result[orders.Order] {
			if patch["status"] != "processing" {
				t.Errorf("unexpected patch status %v", patch["status"])
			}
			return domain.Ok(orders.Order{ID: id, Status: orders.StatusProcessing})
		},
	}
	bus := &recordingBus{}
	h := newTestHandler(client, bus)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/orders/7/status", strings.NewReader(`{"status":"processing"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(TabIDHeader, "tab-42")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/orders/:id/status")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.updateOrderStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var result domain.Result[orders.Order]
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if len(bus.published) != 1 || bus.published[0] != "order" {
		t.Fatalf("expected one order refresh, got %v", bus.published)
	}
	if bus.origins[0] != "tab-42" {
		t.Fatalf("expected origin tab-42, got %q", bus.origins[0])
	}
}
