package usecase

import (
	"context"
	"log/slog"

	"storeAdminWs/internal/modules/collection/application/port"
	collection "storeAdminWs/internal/modules/collection/domain"
	"storeAdminWs/internal/shared/settle"
)

// Counts holds the per-entity totals shown on the dashboard.
type Counts struct {
	Users    int `json:"countUser"`
	Products int `json:"countProduct"`
	Orders   int `json:"countOrder"`
}

// CountsUseCase derives entity totals by issuing one minimal page request
// per entity and reading the server's authoritative item count. This is a
// proxy for a true count endpoint: it holds only as long as the backend
// keeps reporting the collection total on every page response.
type CountsUseCase struct {
	client port.Client
}

func NewCountsUseCase(client port.Client) *CountsUseCase {
	return &CountsUseCase{client: client}
}

// Execute fetches the three totals concurrently. Any failed fetch fails the
// aggregate; the dashboard shows an error state rather than a partial count.
func (uc *CountsUseCase) Execute(ctx context.Context) (Counts, error) {
	probe := collection.ListQuery{Page: 1, PageSize: 1}

	tasks := []func(context.Context) (int, error){
		func(taskCtx context.Context) (int, error) {
			result, err := uc.client.FetchUsers(taskCtx, probe)
			return result.Total, err
		},
		func(taskCtx context.Context) (int, error) {
			result, err := uc.client.FetchProducts(taskCtx, probe)
			return result.Total, err
		},
		func(taskCtx context.Context) (int, error) {
			result, err := uc.client.FetchOrders(taskCtx, probe)
			return result.Total, err
		},
	}

	outcomes := settle.All(ctx, tasks)
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			slog.Warn("dashboard count fetch failed", slog.Any("error", outcome.Err))
			return Counts{}, outcome.Err
		}
	}

	return Counts{
		Users:    outcomes[0].Value,
		Products: outcomes[1].Value,
		Orders:   outcomes[2].Value,
	}, nil
}
