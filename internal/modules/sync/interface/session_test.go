package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	collection "storeAdminWs/internal/modules/collection/domain"
	ordersusecase "storeAdminWs/internal/modules/orders/application/usecase"
	orders "storeAdminWs/internal/modules/orders/domain"
	"storeAdminWs/internal/modules/sync/domain"
	"storeAdminWs/internal/modules/sync/infrastructure"
	"storeAdminWs/internal/shared/auth"
)

// fetchRecorder satisfies the collection client port, recording the page of
// every user fetch.
type fetchRecorder struct {
	pages chan int
}

func (f *fetchRecorder) FetchUsers(ctx context.Context, q collection.ListQuery) (collection.ListResult[collection.User], error) {
	f.pages <- q.Page
	return collection.ListResult[collection.User]{Rows: []collection.User{}, Total: 0}, nil
}

func (f *fetchRecorder) FetchProducts(ctx context.Context, q collection.ListQuery) (collection.ListResult[collection.Product], error) {
	return collection.ListResult[collection.Product]{}, nil
}

func (f *fetchRecorder) FetchOrders(ctx context.Context, q collection.ListQuery) (collection.ListResult[orders.Order], error) {
	return collection.ListResult[orders.Order]{}, nil
}

func (f *fetchRecorder) FetchCategories(ctx context.Context) ([]collection.Category, error) {
	return nil, nil
}

func (f *fetchRecorder) GetUser(ctx context.Context, id int64) (collection.User, error) {
	return collection.User{}, nil
}

func (f *fetchRecorder) GetProduct(ctx context.Context, id int64) (collection.Product, error) {
	return collection.Product{}, nil
}

func (f *fetchRecorder) GetOrder(ctx context.Context, id int64) (orders.Order, error) {
	return orders.Order{}, nil
}

func (f *fetchRecorder) CreateUser(ctx context.Context, data collection.User) collection.Result[collection.User] {
	return collection.Ok(data)
}

func (f *fetchRecorder) UpdateUser(ctx context.Context, id int64, patch map[string]any) collection.Result[collection.User] {
	return collection.Ok(collection.User{ID: id})
}

func (f *fetchRecorder) DeleteUser(ctx context.Context, id int64) collection.Result[struct{}] {
	return collection.Ok(struct{}{})
}

func (f *fetchRecorder) CreateProduct(ctx context.Context, data collection.Product) collection.Result[collection.Product] {
	return collection.Ok(data)
}

func (f *fetchRecorder) UpdateProduct(ctx context.Context, id int64, patch map[string]any) collection.Result[collection.Product] {
	return collection.Ok(collection.Product{ID: id})
}

func (f *fetchRecorder) DeleteProduct(ctx context.Context, id int64) collection.Result[struct{}] {
	return collection.Ok(struct{}{})
}

func (f *fetchRecorder) UpdateOrder(ctx context.Context, id int64, patch map[string]any) collection.Result[orders.Order] {
	return collection.Ok(orders.Order{ID: id})
}

func (f *fetchRecorder) CheckEmailDuplicate(ctx context.Context, email string) (bool, error) {
	return false, nil
}

type stubValidator struct{}

func (stubValidator) Validate(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	return &auth.Claims{
		SessionID:        "session-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}, nil
}

type sessionFixture struct {
	hub     *infrastructure.Hub
	bus     *infrastructure.MemoryBus
	fetches *fetchRecorder
	conn    *websocket.Conn
	inbox   chan domain.Message
}

func newSessionFixture(t *testing.T, tabID string) *sessionFixture {
	t.Helper()
	fetches := &fetchRecorder{pages: make(chan int, 32)}
	hub := infrastructure.NewHub()
	bus := infrastructure.NewMemoryBus()

	e := echo.New()
	e.GET("/ws/admin/:entity/:token", NewWebsocketHandler(SessionDeps{
		Hub:        hub,
		Bus:        bus,
		Client:     fetches,
		Orders:     ordersusecase.NewEnrichOrdersUseCase(fetches, ordersusecase.TotalFromProducts),
		Validator:  stubValidator{},
		SendBuffer: 8,
	}))
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/admin/users/tok?tab=" + tabID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	inbox := make(chan domain.Message, 32)
	go func() {
		for {
			var msg domain.Message
			if err := conn.ReadJSON(&msg); err != nil {
				close(inbox)
				return
			}
			inbox <- msg
		}
	}()

	return &sessionFixture{hub: hub, bus: bus, fetches: fetches, conn: conn, inbox: inbox}
}

func (f *sessionFixture) waitFetch(t *testing.T, wantPage int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case page := <-f.fetches.pages:
			if page == wantPage {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for fetch of page %d", wantPage)
		}
	}
}

func (f *sessionFixture) expectNoFetch(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case page := <-f.fetches.pages:
		t.Fatalf("unexpected fetch of page %d", page)
	case <-time.After(within):
	}
}

func TestSessionRefreshSignalResetsToFirstPage(t *testing.T) {
	f := newSessionFixture(t, "tab-a")

	// Connecting triggers the initial first-page load.
	f.waitFetch(t, 1)

	if err := f.conn.WriteJSON(map[string]any{"action": "page", "payload": map[string]int{"page": 3}}); err != nil {
		t.Fatalf("write page command: %v", err)
	}
	f.waitFetch(t, 3)

	// A signal from another tab resets to page 1 and pushes the signal.
	f.bus.Publish(context.Background(), domain.EntityUser, "tab-b")
	f.waitFetch(t, 1)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-f.inbox:
			if msg.Action == domain.ActionRefresh {
				if msg.Signal != "refresh-user-table" {
					t.Fatalf("unexpected signal %q", msg.Signal)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for refresh push")
		}
	}
}

func TestSessionIgnoresOwnOrigin(t *testing.T) {
	f := newSessionFixture(t, "tab-a")
	f.waitFetch(t, 1)

	f.bus.Publish(context.Background(), domain.EntityUser, "tab-a")
	f.expectNoFetch(t, 150*time.Millisecond)
}

func TestSessionCloseUnsubscribes(t *testing.T) {
	f := newSessionFixture(t, "tab-a")
	f.waitFetch(t, 1)

	f.conn.Close()
	deadline := time.After(2 * time.Second)
	for f.hub.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for detach")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Signals after teardown must neither fetch nor panic.
	f.bus.Publish(context.Background(), domain.EntityUser, "tab-b")
	f.expectNoFetch(t, 150*time.Millisecond)
}
