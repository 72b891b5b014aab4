package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storeAdminWs/internal/modules/collection/application/port"
	"storeAdminWs/internal/modules/collection/domain"
	orders "storeAdminWs/internal/modules/orders/domain"
)

// CollectionHTTPClient implements port.Client against the generic paginated
// REST backend. Every call builds its own request; nothing mutable is shared
// between concurrent lookups.
type CollectionHTTPClient struct {
	rest    *RESTClient
	cache   *LookupCache
	timeout time.Duration
}

var entityPaths = map[string]string{
	"users":      "/users",
	"products":   "/products",
	"orders":     "/orders",
	"categories": "/categories",
}

// NewCollectionHTTPClient builds the client. cache may be nil to disable the
// id-lookup cache.
func NewCollectionHTTPClient(baseURL string, timeout time.Duration, client *http.Client, cache *LookupCache) *CollectionHTTPClient {
	return &CollectionHTTPClient{
		rest:    NewRESTClient(baseURL, timeout, client),
		cache:   cache,
		timeout: timeoutOrDefault(timeout),
	}
}

// listEnvelope is the backend's page shape: {"data": [...], "items": total}.
type listEnvelope[T any] struct {
	Data  []T `json:"data"`
	Items int `json:"items"`
}

func (c *CollectionHTTPClient) FetchUsers(ctx context.Context, query domain.ListQuery) (domain.ListResult[domain.User], error) {
	return fetchPage[domain.User](ctx, c, "users", query)
}

func (c *CollectionHTTPClient) FetchProducts(ctx context.Context, query domain.ListQuery) (domain.ListResult[domain.Product], error) {
	return fetchPage[domain.Product](ctx, c, "products", query)
}

func (c *CollectionHTTPClient) FetchOrders(ctx context.Context, query domain.ListQuery) (domain.ListResult[orders.Order], error) {
	return fetchPage[orders.Order](ctx, c, "orders", query)
}

func (c *CollectionHTTPClient) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.getJSON(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *CollectionHTTPClient) GetUser(ctx context.Context, id int64) (domain.User, error) {
	if c.cache != nil {
		if user, ok := c.cache.GetUser(id); ok {
			return user, nil
		}
	}
	user, err := getByID[domain.User](ctx, c, "users", id)
	if err != nil {
		return domain.User{}, err
	}
	if c.cache != nil {
		c.cache.SetUser(id, user)
	}
	return user, nil
}

func (c *CollectionHTTPClient) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if c.cache != nil {
		if product, ok := c.cache.GetProduct(id); ok {
			return product, nil
		}
	}
	product, err := getByID[domain.Product](ctx, c, "products", id)
	if err != nil {
		return domain.Product{}, err
	}
	if c.cache != nil {
		c.cache.SetProduct(id, product)
	}
	return product, nil
}

func (c *CollectionHTTPClient) GetOrder(ctx context.Context, id int64) (orders.Order, error) {
	return getByID[orders.Order](ctx, c, "orders", id)
}

func (c *CollectionHTTPClient) CreateUser(ctx context.Context, data domain.User) domain.Result[domain.User] {
	result := mutate[domain.User](ctx, c, http.MethodPost, "/users", data)
	c.invalidateOnSuccess("users", result.Success)
	return result
}

func (c *CollectionHTTPClient) UpdateUser(ctx context.Context, id int64, patch map[string]any) domain.Result[domain.User] {
	result := mutate[domain.User](ctx, c, http.MethodPatch, resourcePath("users", id), patch)
	c.invalidateOnSuccess("users", result.Success)
	return result
}

func (c *CollectionHTTPClient) DeleteUser(ctx context.Context, id int64) domain.Result[struct{}] {
	result := remove(ctx, c, resourcePath("users", id))
	c.invalidateOnSuccess("users", result.Success)
	return result
}

func (c *CollectionHTTPClient) CreateProduct(ctx context.Context, data domain.Product) domain.Result[domain.Product] {
	result := mutate[domain.Product](ctx, c, http.MethodPost, "/products", data)
	c.invalidateOnSuccess("products", result.Success)
	return result
}

func (c *CollectionHTTPClient) UpdateProduct(ctx context.Context, id int64, patch map[string]any) domain.Result[domain.Product] {
	result := mutate[domain.Product](ctx, c, http.MethodPatch, resourcePath("products", id), patch)
	c.invalidateOnSuccess("products", result.Success)
	return result
}

func (c *CollectionHTTPClient) DeleteProduct(ctx context.Context, id int64) domain.Result[struct{}] {
	result := remove(ctx, c, resourcePath("products", id))
	c.invalidateOnSuccess("products", result.Success)
	return result
}

func (c *CollectionHTTPClient) UpdateOrder(ctx context.Context, id int64, patch map[string]any) domain.Result[orders.Order] {
	return mutate[orders.Order](ctx, c, http.MethodPatch, resourcePath("orders", id), patch)
}

func (c *CollectionHTTPClient) CheckEmailDuplicate(ctx context.Context, email string) (bool, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false, nil
	}
	values := url.Values{}
	values.Set("email", trimmed)
	var matches []domain.User
	if err := c.getJSON(ctx, "/users", values, &matches); err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

func (c *CollectionHTTPClient) invalidateOnSuccess(entity string, success bool) {
	if c.cache == nil || !success {
		return
	}
	switch entity {
	case "users":
		c.cache.InvalidateUsers()
	case "products":
		c.cache.InvalidateProducts()
	}
}

func resourcePath(entity string, id int64) string {
	return entityPaths[entity] + "/" + strconv.FormatInt(id, 10)
}

func fetchPage[T any](ctx context.Context, c *CollectionHTTPClient, entity string, query domain.ListQuery) (domain.ListResult[T], error) {
	var zero domain.ListResult[T]
	path, ok := entityPaths[entity]
	if !ok {
		slog.Warn("collection entity unsupported", slog.String("entity", entity))
		return zero, port.ErrUnsupportedEntity
	}

	normalized := query.Normalize()
	var envelope listEnvelope[T]
	if err := c.getJSON(ctx, path, normalized.ToURLValues(), &envelope); err != nil {
		return zero, err
	}

	rows := envelope.Data
	if rows == nil {
		rows = []T{}
	}
	return domain.ListResult[T]{Rows: rows, Total: envelope.Items}, nil
}

func getByID[T any](ctx context.Context, c *CollectionHTTPClient, entity string, id int64) (T, error) {
	var zero T
	if _, ok := entityPaths[entity]; !ok {
		return zero, port.ErrUnsupportedEntity
	}
	var decoded T
	if err := c.getJSON(ctx, resourcePath(entity, id), nil, &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func (c *CollectionHTTPClient) getJSON(ctx context.Context, path string, values url.Values, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.rest.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		slog.Error("collection request build failed", slog.String("path", path), slog.Any("error", err))
		return err
	}
	req.Header.Set("Accept", "application/json")
	if len(values) > 0 {
		req.URL.RawQuery = values.Encode()
	}
	slog.Debug("collection request", slog.String("url", req.URL.String()))

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("collection request error", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("%w: %v", port.ErrBackendUnavailable, err)
	}
	defer res.Body.Close()
	slog.Debug("collection response", slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()))

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return port.ErrForbidden
	}
	if res.StatusCode == http.StatusNotFound {
		return port.ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		slog.Error("collection unexpected status", slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()), slog.String("body", strings.TrimSpace(string(body))))
		return fmt.Errorf("unexpected collection response %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode collection response: %w", err)
	}
	return nil
}

func mutate[T any](ctx context.Context, c *CollectionHTTPClient, method, path string, payload any) domain.Result[T] {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return domain.Fail[T]("encode request: " + err.Error())
	}

	req, err := c.rest.NewRequest(ctx, method, path, bytes.NewReader(encoded))
	if err != nil {
		return domain.Fail[T]("build request: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Warn("collection mutation failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return domain.Fail[T]("backend unreachable: " + err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = http.StatusText(res.StatusCode)
		}
		slog.Warn("collection mutation rejected", slog.String("method", method), slog.String("path", path), slog.Int("status", res.StatusCode))
		return domain.Fail[T](message)
	}

	var decoded T
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return domain.Fail[T]("decode response: " + err.Error())
	}
	return domain.Ok(decoded)
}

func remove(ctx context.Context, c *CollectionHTTPClient, path string) domain.Result[struct{}] {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.rest.NewRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return domain.Fail[struct{}]("build request: " + err.Error())
	}

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Warn("collection delete failed", slog.String("path", path), slog.Any("error", err))
		return domain.Fail[struct{}]("backend unreachable: " + err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = http.StatusText(res.StatusCode)
		}
		return domain.Fail[struct{}](message)
	}

	return domain.Result[struct{}]{Success: true}
}

var _ port.Client = (*CollectionHTTPClient)(nil)
