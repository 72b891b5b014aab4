package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storeAdminWs/internal/modules/sync/application/port"
	"storeAdminWs/internal/modules/sync/domain"
)

var refreshSignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "saw_refresh_signals_total",
	Help: "Refresh signals published per sync topic.",
}, []string{"topic"})

type subscription struct {
	origin  string
	handler func()
}

// MemoryBus is the in-process Bus implementation. Handlers run on their own
// goroutines so publishing never blocks on a slow subscriber.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string]map[*subscription]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[*subscription]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, entity, origin string) {
	topic := domain.Topic(entity)
	if topic == "" {
		return
	}
	refreshSignalsTotal.WithLabelValues(topic).Inc()

	b.mu.RLock()
	targets := make([]*subscription, 0, len(b.subs[topic]))
	for sub := range b.subs[topic] {
		if origin != "" && sub.origin == origin {
			continue
		}
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	slog.Debug("refresh signal published", slog.String("topic", topic), slog.String("origin", origin), slog.Int("subscribers", len(targets)))
	for _, sub := range targets {
		go sub.handler()
	}
}

func (b *MemoryBus) Subscribe(entity, origin string, onRefresh func()) func() {
	topic := domain.Topic(entity)
	if topic == "" || onRefresh == nil {
		return func() {}
	}

	sub := &subscription{origin: origin, handler: onRefresh}
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*subscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if subs, ok := b.subs[topic]; ok {
				delete(subs, sub)
				if len(subs) == 0 {
					delete(b.subs, topic)
				}
			}
			b.mu.Unlock()
		})
	}
}

var _ port.Bus = (*MemoryBus)(nil)
