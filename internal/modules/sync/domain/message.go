package domain

import "time"

// Message is the wire shape pushed to connected tabs: either a refresh
// signal on an entity's sync topic or a list state snapshot.
type Message struct {
	Topic     string    `json:"topic"`
	Entity    string    `json:"entity,omitempty"`
	Action    string    `json:"action,omitempty"`
	Signal    string    `json:"signal,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	ActionRefresh = "refresh"
	ActionList    = "list"
	ActionPong    = "pong"
	ActionError   = "error"
)

// BuildRefreshMessage composes the cross-tab refresh signal for an entity.
// The signal carries no payload; receivers refetch from their own state.
func BuildRefreshMessage(entity string, at time.Time) *Message {
	topic := Topic(entity)
	if topic == "" {
		return nil
	}
	return &Message{
		Topic:     topic,
		Entity:    entity,
		Action:    ActionRefresh,
		Signal:    RefreshSignal(entity),
		Timestamp: at.UTC(),
	}
}

// BuildListMessage composes a list state push for one tab's controller.
func BuildListMessage(entity string, state any, at time.Time) *Message {
	topic := Topic(entity)
	if topic == "" {
		return nil
	}
	return &Message{
		Topic:     topic,
		Entity:    entity,
		Action:    ActionList,
		Data:      state,
		Timestamp: at.UTC(),
	}
}
