package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	collection "storeAdminWs/internal/modules/collection/domain"
)

// blockingFetch records issued queries and blocks each fetch until the test
// releases it.
type blockingFetch struct {
	mu      sync.Mutex
	queries []collection.ListQuery
	started chan collection.ListQuery
	release []chan collection.ListResult[string]
}

func newBlockingFetch() *blockingFetch {
	return &blockingFetch{started: make(chan collection.ListQuery, 16)}
}

func (f *blockingFetch) fetch(_ context.Context, query collection.ListQuery) (collection.ListResult[string], error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	gate := make(chan collection.ListResult[string], 1)
	f.release = append(f.release, gate)
	f.mu.Unlock()
	f.started <- query
	return <-gate, nil
}

func (f *blockingFetch) releaseFetch(index int, result collection.ListResult[string]) {
	f.mu.Lock()
	gate := f.release[index]
	f.mu.Unlock()
	gate <- result
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func TestControllerLastRequestWins(t *testing.T) {
	fetcher := newBlockingFetch()
	ctrl := NewController(fetcher.fetch, nil)
	defer ctrl.Close()

	ctrl.Refresh()
	<-fetcher.started // fetch A in flight

	ctrl.SetPage(2)
	<-fetcher.started // fetch B in flight

	// B resolves first, then the stale A.
	fetcher.releaseFetch(1, collection.ListResult[string]{Rows: []string{"b"}, Total: 222})
	waitFor(t, func() bool { return ctrl.Snapshot().Total == 222 })

	fetcher.releaseFetch(0, collection.ListResult[string]{Rows: []string{"a"}, Total: 111})
	time.Sleep(50 * time.Millisecond)

	state := ctrl.Snapshot()
	if state.Total != 222 || len(state.Rows) != 1 || state.Rows[0] != "b" {
		t.Fatalf("stale fetch overwrote the newer result: %+v", state)
	}
	if state.Loading {
		t.Fatalf("controller should not be loading after the latest fetch resolved")
	}
}

func TestControllerCoalescesBurstsIntoOneFetch(t *testing.T) {
	fetcher := newBlockingFetch()
	ctrl := NewController(fetcher.fetch, nil)
	defer ctrl.Close()

	ctrl.SetFilter("name", "g")
	ctrl.SetFilter("name", "go")
	ctrl.SetFilter("category", "fiction")
	ctrl.SetPageSize(20)

	query := <-fetcher.started
	fetcher.releaseFetch(0, collection.ListResult[string]{Rows: []string{"x"}, Total: 1})

	if query.Filters["name"] != "go" || query.Filters["category"] != "fiction" {
		t.Fatalf("fetch must carry the final combined filters, got %v", query.Filters)
	}
	if query.PageSize != 20 {
		t.Fatalf("fetch must carry the final page size, got %d", query.PageSize)
	}
	if query.Page != 1 {
		t.Fatalf("filter and page size changes must reset to page 1, got %d", query.Page)
	}

	select {
	case extra := <-fetcher.started:
		t.Fatalf("burst produced a second fetch: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestControllerPageResetRules(t *testing.T) {
	fetcher := newBlockingFetch()
	ctrl := NewController(fetcher.fetch, nil)
	defer ctrl.Close()

	ctrl.SetPage(3)
	query := <-fetcher.started
	fetcher.releaseFetch(0, collection.ListResult[string]{Total: 30})
	if query.Page != 3 {
		t.Fatalf("page-only change must keep the requested page, got %d", query.Page)
	}

	ctrl.SetSort("createdAt")
	query = <-fetcher.started
	fetcher.releaseFetch(1, collection.ListResult[string]{Total: 30})
	if query.Page != 1 || query.SortField != "createdAt" {
		t.Fatalf("sort change must reset to page 1, got %+v", query)
	}
}

func TestControllerKeepsPreviousRowsOnFailure(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	fetch := func(_ context.Context, query collection.ListQuery) (collection.ListResult[string], error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return collection.ListResult[string]{}, errors.New("backend down")
		}
		return collection.ListResult[string]{Rows: []string{"keep", "me"}, Total: 2}, nil
	}

	ctrl := NewController(fetch, nil)
	defer ctrl.Close()

	ctrl.Refresh()
	waitFor(t, func() bool { return ctrl.Snapshot().Total == 2 })

	mu.Lock()
	fail = true
	mu.Unlock()
	ctrl.Refresh()
	waitFor(t, func() bool { return ctrl.Snapshot().Error != "" })

	state := ctrl.Snapshot()
	if len(state.Rows) != 2 || state.Total != 2 {
		t.Fatalf("failed fetch must not flash the table to empty: %+v", state)
	}
	if state.Loading {
		t.Fatalf("loading must clear after a failed fetch")
	}
}

func TestControllerResetAndRefresh(t *testing.T) {
	fetcher := newBlockingFetch()
	ctrl := NewController(fetcher.fetch, nil)
	defer ctrl.Close()

	ctrl.SetPage(4)
	<-fetcher.started
	fetcher.releaseFetch(0, collection.ListResult[string]{Total: 40})

	ctrl.ResetAndRefresh()
	query := <-fetcher.started
	fetcher.releaseFetch(1, collection.ListResult[string]{Total: 40})

	if query.Page != 1 {
		t.Fatalf("refresh signal handling must reset to page 1, got %d", query.Page)
	}
}

func TestControllerNoFetchForNoopChanges(t *testing.T) {
	fetcher := newBlockingFetch()
	ctrl := NewController(fetcher.fetch, nil)
	defer ctrl.Close()

	ctrl.SetPage(1)           // already page 1
	ctrl.SetFilter("name", "") // clearing an absent filter

	select {
	case query := <-fetcher.started:
		t.Fatalf("no-op transitions must not fetch, got %+v", query)
	case <-time.After(100 * time.Millisecond):
	}
}
