package port

import "context"

// Bus is the cross-tab broadcast boundary. Delivery is at-most-once,
// unordered, fire-and-forget: Publish never blocks and never waits for
// acknowledgment, and a subscriber registered with the publisher's origin
// never receives its own signal. Lost signals are acceptable; the next
// manual action reconciles.
//
// The bus is an injected service with explicit lifecycle, not module-level
// channel globals: tests substitute an in-memory implementation.
type Bus interface {
	// Publish emits the entity's refresh signal. origin identifies the
	// publishing tab and is excluded from delivery; an empty origin reaches
	// every subscriber.
	Publish(ctx context.Context, entity, origin string)

	// Subscribe registers onRefresh for the entity's topic under the given
	// origin. The returned function unregisters the handler and must be
	// called on teardown to avoid leaking listeners.
	Subscribe(entity, origin string, onRefresh func()) (unsubscribe func())
}
