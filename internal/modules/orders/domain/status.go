package domain

import "strings"

// Status represents the lifecycle of an order as exposed by the REST API.
// The chain is a strict total order: pending → processing → shipped →
// delivered, with delivered terminal and no backward moves.
type Status string

const (
	StatusUnknown    Status = ""
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

var statusSuccessor = map[Status]Status{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

var allowedStatuses = map[string]Status{
	string(StatusPending):    StatusPending,
	string(StatusProcessing): StatusProcessing,
	string(StatusShipped):    StatusShipped,
	string(StatusDelivered):  StatusDelivered,
}

// NormalizeStatus returns the canonical Status for the given input.
// Unknown statuses are lowercased and returned as-is to avoid data loss.
func NormalizeStatus(value any) Status {
	s, ok := value.(string)
	if !ok {
		return StatusUnknown
	}
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return StatusUnknown
	}
	if status, ok := allowedStatuses[trimmed]; ok {
		return status
	}
	return Status(trimmed)
}

// Next returns the single successor state, or false when the status is
// terminal or not part of the chain.
func (s Status) Next() (Status, bool) {
	next, ok := statusSuccessor[s]
	return next, ok
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusDelivered
}

// CanAdvanceTo reports whether moving to next is a legal transition. Only the
// immediate successor is ever legal.
func (s Status) CanAdvanceTo(next Status) bool {
	successor, ok := statusSuccessor[s]
	return ok && successor == next
}

// OfferedNext lists the statuses a UI may offer from the current one: exactly
// one element for any non-terminal chain state, none otherwise.
func (s Status) OfferedNext() []Status {
	if next, ok := statusSuccessor[s]; ok {
		return []Status{next}
	}
	return nil
}
