package async

import (
	"context"
	"fmt"
	"sync"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes multiple tasks in parallel and returns the first
// error encountered. All tasks are started concurrently, and the
// function waits for all to complete.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))
	for _, task := range tasks {
		go func() {
			resultChan <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var firstError error
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil && firstError == nil {
			firstError = fmt.Errorf("%s: %w", res.name, res.err)
		}
	}
	return firstError
}

// RunPerNode runs fn once per node concurrently and returns a result
// for every node. A nil map value marks success; failures never shadow
// other nodes' outcomes.
func RunPerNode(ctx context.Context, nodes []string, fn func(ctx context.Context, node string) error) map[string]error {
	results := make(map[string]error, len(nodes))
	if len(nodes) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, node := range nodes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fn(ctx, node)
			mu.Lock()
			results[node] = err
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}
