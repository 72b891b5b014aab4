package domain

// ListResult is one page of a collection. Total is the server's authoritative
// count for the whole collection and is independent of len(Rows).
type ListResult[T any] struct {
	Rows  []T `json:"rows"`
	Total int `json:"total"`
}

// Result is the uniform envelope every mutation returns. Expected HTTP
// failures never surface as Go errors; callers branch on Success and read
// Message for the cause.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Ok wraps a successful mutation payload.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: &data}
}

// Fail wraps a failed mutation with a user-facing message.
func Fail[T any](message string) Result[T] {
	return Result[T]{Success: false, Message: message}
}
