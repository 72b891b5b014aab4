package usecase

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	collection "storeAdminWs/internal/modules/collection/domain"
)

// coalesceWindow bounds how long the run loop waits for further state
// mutations before issuing the fetch for their combined result.
const coalesceWindow = 5 * time.Millisecond

// FetchFunc produces one page for the controller's current query.
type FetchFunc[T any] func(ctx context.Context, query collection.ListQuery) (collection.ListResult[T], error)

// State is an immutable snapshot of a controller handed to the view layer.
type State[T any] struct {
	Page      int               `json:"page"`
	PageSize  int               `json:"pageSize"`
	SortField string            `json:"sortField,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	Rows      []T               `json:"rows"`
	Total     int               `json:"total"`
	Loading   bool              `json:"loading"`
	Error     string            `json:"error,omitempty"`
}

// Commands is the type-erased control surface a transport session uses to
// drive a controller without knowing its row type.
type Commands interface {
	SetPage(page int)
	SetPageSize(pageSize int)
	SetSort(field string)
	SetFilter(key, value string)
	Refresh()
	ResetAndRefresh()
	Close()
}

// Controller owns the paging state of one list view and turns state changes
// into fetches. Rapid successive mutations coalesce into a single fetch of
// the final combined state; when fetches overlap, only the most recently
// issued one may update the state (last-request-wins), stale responses are
// discarded at merge time.
type Controller[T any] struct {
	fetch    FetchFunc[T]
	onChange func(State[T])

	mu        sync.Mutex
	page      int
	pageSize  int
	sortField string
	filters   map[string]string
	rows      []T
	total     int
	loading   bool
	errMsg    string
	issued    uint64

	kick      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewController starts the controller's run loop. onChange may be nil;
// otherwise it receives a snapshot after every visible transition.
func NewController[T any](fetch FetchFunc[T], onChange func(State[T])) *Controller[T] {
	c := &Controller[T]{
		fetch:    fetch,
		onChange: onChange,
		page:     1,
		pageSize: 5,
		filters:  make(map[string]string),
		rows:     []T{},
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Controller[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	if c.page == page {
		c.mu.Unlock()
		return
	}
	c.page = page
	c.mu.Unlock()
	c.schedule()
}

func (c *Controller[T]) SetPageSize(pageSize int) {
	if pageSize < 1 {
		pageSize = 1
	}
	c.mu.Lock()
	if c.pageSize == pageSize {
		c.mu.Unlock()
		return
	}
	c.pageSize = pageSize
	c.page = 1
	c.mu.Unlock()
	c.schedule()
}

func (c *Controller[T]) SetSort(field string) {
	field = strings.TrimSpace(field)
	c.mu.Lock()
	if c.sortField == field {
		c.mu.Unlock()
		return
	}
	c.sortField = field
	c.page = 1
	c.mu.Unlock()
	c.schedule()
}

// SetFilter sets or, with an empty value, clears one filter field.
func (c *Controller[T]) SetFilter(key, value string) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return
	}
	c.mu.Lock()
	if current, ok := c.filters[key]; (ok && current == value) || (!ok && value == "") {
		c.mu.Unlock()
		return
	}
	if value == "" {
		delete(c.filters, key)
	} else {
		c.filters[key] = value
	}
	c.page = 1
	c.mu.Unlock()
	c.schedule()
}

// Refresh re-issues a fetch for the unchanged current state.
func (c *Controller[T]) Refresh() {
	c.schedule()
}

// ResetAndRefresh jumps back to the first page and re-fetches; this is the
// reaction to a cross-tab refresh signal.
func (c *Controller[T]) ResetAndRefresh() {
	c.mu.Lock()
	c.page = 1
	c.mu.Unlock()
	c.schedule()
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops the run loop. In-flight fetch results are discarded.
func (c *Controller[T]) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Controller[T]) schedule() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

func (c *Controller[T]) run() {
	for {
		select {
		case <-c.done:
			return
		case <-c.kick:
		}

		// Absorb mutations landing in the same burst (typing, multi-field
		// updates) so only the final combined state is fetched.
		time.Sleep(coalesceWindow)
		select {
		case <-c.kick:
		default:
		}

		c.mu.Lock()
		c.issued++
		seq := c.issued
		query := c.queryLocked()
		c.loading = true
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snapshot)

		go c.execute(seq, query)
	}
}

func (c *Controller[T]) execute(seq uint64, query collection.ListQuery) {
	result, err := c.fetch(context.Background(), query)

	c.mu.Lock()
	if seq != c.issued {
		// A newer fetch was issued while this one was in flight; its result
		// owns the state regardless of arrival order.
		c.mu.Unlock()
		slog.Debug("list fetch superseded", slog.Uint64("seq", seq), slog.String("query", query.CanonicalKey()))
		return
	}
	select {
	case <-c.done:
		c.mu.Unlock()
		return
	default:
	}

	if err != nil {
		// Keep the previous rows and total: a failed fetch must not flash
		// the table to empty.
		c.errMsg = "failed to load list: " + err.Error()
		slog.Warn("list fetch failed", slog.String("query", query.CanonicalKey()), slog.Any("error", err))
	} else {
		c.rows = result.Rows
		c.total = result.Total
		c.errMsg = ""
	}
	c.loading = false
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

func (c *Controller[T]) queryLocked() collection.ListQuery {
	return collection.ListQuery{
		Page:      c.page,
		PageSize:  c.pageSize,
		SortField: c.sortField,
		Filters:   maps.Clone(c.filters),
	}
}

func (c *Controller[T]) snapshotLocked() State[T] {
	rows := make([]T, len(c.rows))
	copy(rows, c.rows)
	return State[T]{
		Page:      c.page,
		PageSize:  c.pageSize,
		SortField: c.sortField,
		Filters:   maps.Clone(c.filters),
		Rows:      rows,
		Total:     c.total,
		Loading:   c.loading,
		Error:     c.errMsg,
	}
}

func (c *Controller[T]) notify(snapshot State[T]) {
	if c.onChange == nil {
		return
	}
	c.onChange(snapshot)
}

var _ Commands = (*Controller[int])(nil)
