// Package async provides a minimal future primitive for fanning work out
// across goroutines and collecting the results. The newsletter broadcast
// splits its recipient list into chunks and runs one future per chunk, which
// keeps concurrency bounded by the chunk count.
package async

import (
	"context"
	"errors"
)

// Future holds the eventual result of a function started with Go.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Await blocks until the function finishes and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// Done reports completion without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Go runs fn in its own goroutine and returns a Future for its result. A
// context canceled before the goroutine starts resolves the future with the
// context's error without calling fn.
func Go[P, T any](ctx context.Context, param P, fn func(context.Context, P) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll awaits every future and returns all results. The returned error is
// the join of every future error, so partial failures are all visible.
func WaitAll[T any](futures ...*Future[T]) ([]T, error) {
	results := make([]T, len(futures))
	var errs []error

	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}
