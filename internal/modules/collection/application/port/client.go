package port

import (
	"context"
	"errors"

	"storeAdminWs/internal/modules/collection/domain"
	orders "storeAdminWs/internal/modules/orders/domain"
)

var (
	ErrNotFound           = errors.New("collection resource not found")
	ErrForbidden          = errors.New("collection access forbidden")
	ErrUnsupportedEntity  = errors.New("collection entity unsupported")
	ErrBackendUnavailable = errors.New("collection backend unavailable")
)

// Client is the typed surface over the paginated REST backend. Page fetches
// and id lookups return errors; mutations return the uniform Result envelope
// and never error for expected HTTP failures. Implementations must be safe
// for concurrent use: the enrichment fan-out calls GetUser/GetProduct from
// many goroutines at once.
type Client interface {
	FetchUsers(ctx context.Context, query domain.ListQuery) (domain.ListResult[domain.User], error)
	FetchProducts(ctx context.Context, query domain.ListQuery) (domain.ListResult[domain.Product], error)
	FetchOrders(ctx context.Context, query domain.ListQuery) (domain.ListResult[orders.Order], error)
	FetchCategories(ctx context.Context) ([]domain.Category, error)

	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	GetOrder(ctx context.Context, id int64) (orders.Order, error)

	CreateUser(ctx context.Context, data domain.User) domain.Result[domain.User]
	UpdateUser(ctx context.Context, id int64, patch map[string]any) domain.Result[domain.User]
	DeleteUser(ctx context.Context, id int64) domain.Result[struct{}]

	CreateProduct(ctx context.Context, data domain.Product) domain.Result[domain.Product]
	UpdateProduct(ctx context.Context, id int64, patch map[string]any) domain.Result[domain.Product]
	DeleteProduct(ctx context.Context, id int64) domain.Result[struct{}]

	UpdateOrder(ctx context.Context, id int64, patch map[string]any) domain.Result[orders.Order]

	CheckEmailDuplicate(ctx context.Context, email string) (bool, error)
}
