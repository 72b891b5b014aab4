package usecase

import (
	"context"
	"log/slog"
	"strings"

	"storeAdminWs/internal/modules/collection/application/port"
	collection "storeAdminWs/internal/modules/collection/domain"
	"storeAdminWs/internal/modules/orders/domain"
	"storeAdminWs/internal/shared/settle"
)

// UnknownUser is the display name substituted when the user lookup for an
// order fails.
const UnknownUser = "Unknown"

// TotalPolicy declares how an enriched order's total price is derived.
type TotalPolicy string

const (
	// TotalFromProducts recomputes the total as the sum of every resolved
	// product's price; a failed product lookup contributes zero.
	TotalFromProducts TotalPolicy = "products"
	// TotalStored keeps the order's stored total and skips product lookups
	// entirely.
	TotalStored TotalPolicy = "stored"
)

// EnrichOrdersUseCase converts a page of raw orders into display-ready rows.
// All per-order joins for a page run concurrently; a page only fails when the
// raw order fetch itself fails. Per-row lookup failures are absorbed: they
// degrade the row, never the page.
type EnrichOrdersUseCase struct {
	client port.Client
	policy TotalPolicy
}

func NewEnrichOrdersUseCase(client port.Client, policy TotalPolicy) *EnrichOrdersUseCase {
	if policy != TotalStored {
		policy = TotalFromProducts
	}
	return &EnrichOrdersUseCase{client: client, policy: policy}
}

// ListOrders fetches one order page and joins every row.
func (uc *EnrichOrdersUseCase) ListOrders(ctx context.Context, query collection.ListQuery) (collection.ListResult[domain.EnrichedOrder], error) {
	page, err := uc.client.FetchOrders(ctx, query)
	if err != nil {
		slog.Error("order page fetch failed", slog.String("query", query.CanonicalKey()), slog.Any("error", err))
		return collection.ListResult[domain.EnrichedOrder]{}, err
	}

	tasks := make([]func(context.Context) (domain.EnrichedOrder, error), len(page.Rows))
	for i, order := range page.Rows {
		order := order
		tasks[i] = func(taskCtx context.Context) (domain.EnrichedOrder, error) {
			return uc.Enrich(taskCtx, order), nil
		}
	}
	outcomes := settle.All(ctx, tasks)

	enriched := make([]domain.EnrichedOrder, len(outcomes))
	for i, outcome := range outcomes {
		enriched[i] = outcome.Value
	}

	return collection.ListResult[domain.EnrichedOrder]{Rows: enriched, Total: page.Total}, nil
}

// Enrich resolves one order's foreign keys. The user lookup and every
// product lookup run concurrently; latency is bounded by the slowest single
// lookup. Enrich never fails: lookup errors fall back to UnknownUser and a
// zero price contribution.
func (uc *EnrichOrdersUseCase) Enrich(ctx context.Context, order domain.Order) domain.EnrichedOrder {
	enriched := domain.EnrichedOrder{Order: order, UserFullName: UnknownUser}

	type userOutcome struct {
		name string
		ok   bool
	}
	userCh := make(chan userOutcome, 1)
	go func() {
		user, err := uc.client.GetUser(ctx, order.UserID)
		if err != nil {
			slog.Debug("order user lookup failed", slog.Int64("orderId", order.ID), slog.Int64("userId", order.UserID), slog.Any("error", err))
			userCh <- userOutcome{}
			return
		}
		userCh <- userOutcome{name: strings.TrimSpace(user.Name), ok: true}
	}()

	if uc.policy == TotalFromProducts {
		tasks := make([]func(context.Context) (float64, error), len(order.ProductIDs))
		for i, productID := range order.ProductIDs {
			productID := productID
			tasks[i] = func(taskCtx context.Context) (float64, error) {
				product, err := uc.client.GetProduct(taskCtx, productID)
				if err != nil {
					return 0, err
				}
				return product.Price, nil
			}
		}

		total := 0.0
		for i, outcome := range settle.All(ctx, tasks) {
			if outcome.Err != nil {
				slog.Warn("order product lookup failed", slog.Int64("orderId", order.ID), slog.Int64("productId", order.ProductIDs[i]), slog.Any("error", outcome.Err))
				continue
			}
			total += outcome.Value
		}
		enriched.TotalPrice = total
	}

	if user := <-userCh; user.ok && user.name != "" {
		enriched.UserFullName = user.name
	}

	return enriched
}
