package domain

// Order is the raw row the backend returns: related records appear as bare
// foreign keys and must be resolved client-side.
type Order struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"userId"`
	ProductIDs []int64 `json:"productIds"`
	Amount     int     `json:"amount"`
	TotalPrice float64 `json:"totalPrice"`
	Status     Status  `json:"status"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
}

// EnrichedOrder is an Order joined with the records its foreign keys point
// at. Built fresh per page fetch, never persisted.
type EnrichedOrder struct {
	Order
	UserFullName string `json:"userFullName"`
}
