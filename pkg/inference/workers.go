package inference

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// PoolConfig bounds the profiling fan-out against the query service.
type PoolConfig struct {
	MaxConcurrent int
}

// DefaultPoolConfig returns the standard fan-out bound.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxConcurrent: 4}
}

// WorkerPool runs independent profiling queries with bounded parallelism.
// A semaphore limits outstanding queries; results are collected as they
// complete so a slow fact never blocks the others.
type WorkerPool struct {
	config PoolConfig
	logger *zap.Logger
}

// NewWorkerPool creates a pool for profiling fan-out.
func NewWorkerPool(config PoolConfig, logger *zap.Logger) *WorkerPool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = DefaultPoolConfig().MaxConcurrent
	}
	return &WorkerPool{
		config: config,
		logger: logger.Named("profiling-pool"),
	}
}

// Task is one keyed unit of profiling work. Keys must be unique within a
// batch; each key's output slot is written exactly once.
type Task[T any] struct {
	Key string
	Run func(ctx context.Context) (T, error)
}

// TaskResult carries one task's outcome.
type TaskResult[T any] struct {
	Key   string
	Value T
	Err   error
}

// RunTasks executes all tasks with bounded parallelism and returns results
// in completion order. A failed task does not stop the batch. Cancellation
// stops issuing new queries; in-flight queries finish or time out on their
// own contexts.
func RunTasks[T any](ctx context.Context, pool *WorkerPool, tasks []Task[T]) []TaskResult[T] {
	if len(tasks) == 0 {
		return nil
	}

	results := make([]TaskResult[T], 0, len(tasks))
	resultsChan := make(chan TaskResult[T], len(tasks))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(task Task[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				var zero T
				resultsChan <- TaskResult[T]{Key: task.Key, Value: zero, Err: ctx.Err()}
				return
			}

			value, err := task.Run(ctx)
			resultsChan <- TaskResult[T]{Key: task.Key, Value: value, Err: err}
		}(task)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for result := range resultsChan {
		if result.Err != nil {
			pool.logger.Debug("profiling task failed",
				zap.String("key", result.Key),
				zap.Error(result.Err))
		}
		results = append(results, result)
	}

	return results
}
