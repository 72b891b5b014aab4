// Package settle provides a join-with-per-item-failure-isolation combinator:
// every task runs, every task's outcome is kept, and no failure
// short-circuits its siblings.
package settle

import (
	"context"
	"sync"
)

// Outcome holds the result slot for one task: either Value or Err is
// meaningful, never both.
type Outcome[T any] struct {
	Value T
	Err   error
}

// All runs every task concurrently and waits for all of them. Each task
// writes into its own slot, so no locking is needed and results keep the
// input order. Overall latency is bounded by the slowest task, not the sum.
func All[T any](ctx context.Context, tasks []func(context.Context) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(tasks))
	if len(tasks) == 0 {
		return outcomes
	}

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(index int, run func(context.Context) (T, error)) {
			defer wg.Done()
			value, err := run(ctx)
			outcomes[index] = Outcome[T]{Value: value, Err: err}
		}(i, task)
	}
	wg.Wait()

	return outcomes
}
