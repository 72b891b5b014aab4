package domain

import "strings"

// Entities with a broadcast topic. One topic per entity; a topic carries a
// single opaque refresh signal and nothing else.
const (
	EntityUser    = "user"
	EntityProduct = "product"
	EntityOrder   = "order"
)

// Entities lists every entity with a sync topic.
func Entities() []string {
	return []string{EntityUser, EntityProduct, EntityOrder}
}

// Topic returns the canonical sync topic for the given entity
// (user → "user-sync").
func Topic(entity string) string {
	cleaned := normalize(entity)
	if cleaned == "" {
		return ""
	}
	return cleaned + "-sync"
}

// RefreshSignal returns the literal signal value carried on the entity's
// topic (user → "refresh-user-table").
func RefreshSignal(entity string) string {
	cleaned := normalize(entity)
	if cleaned == "" {
		return ""
	}
	return "refresh-" + cleaned + "-table"
}

// NormalizeEntity maps request-level spellings onto canonical entity names.
func NormalizeEntity(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user", "users":
		return EntityUser
	case "product", "products", "book", "books":
		return EntityProduct
	case "order", "orders":
		return EntityOrder
	default:
		return ""
	}
}

func normalize(entity string) string {
	return strings.ToLower(strings.TrimSpace(entity))
}
