// Package async runs named, independent tasks on a small worker pool and
// collects their results by name. Report building fans out per-section
// computations with it.
package async

import (
	"context"
	"runtime"
	"sync"
)

// Task is a named unit of work.
type Task struct {
	Name    string
	Execute func() (interface{}, error)
}

// Result carries a task's output or error.
type Result struct {
	Name string
	Data interface{}
	Err  error
}

// Pool executes task batches on a fixed number of workers.
type Pool struct {
	workerCount int
}

// NewPool creates a pool. A non-positive workerCount uses GOMAXPROCS.
func NewPool(workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
	}
	return &Pool{workerCount: workerCount}
}

// Run executes all tasks and returns their results keyed by task name. The
// map always carries one entry per task: when ctx is cancelled mid-dispatch,
// every task that never started is reported with the context error, so
// callers checking FirstError see the cancellation instead of missing keys.
func (p *Pool) Run(ctx context.Context, tasks []Task) map[string]Result {
	taskCh := make(chan Task)
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				data, err := task.Execute()
				resultCh <- Result{Name: task.Name, Data: data, Err: err}
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for i, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				for _, skipped := range tasks[i:] {
					resultCh <- Result{Name: skipped.Name, Err: ctx.Err()}
				}
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make(map[string]Result, len(tasks))
	for result := range resultCh {
		results[result.Name] = result
	}
	return results
}

// FirstError returns the first task error found, or nil.
func FirstError(results map[string]Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
