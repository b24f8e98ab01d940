// Package fanout runs independent requests through a bounded worker pool.
// Items are processed in any order; each one either produces a result, is
// skipped, or is retried with backoff until it resolves. Only unexpected
// errors abort the batch.
package fanout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when Map is called with a non-positive worker count.
const DefaultWorkers = 8

// ErrSkip marks a per-item failure that drops the item from the output
// instead of failing the batch (an unknown username, say).
var ErrSkip = errors.New("fanout: item skipped")

// Retryable wraps an error that should be retried with exponential backoff,
// such as an HTTP 429.
type Retryable struct{ Err error }

func (r *Retryable) Error() string { return "retryable: " + r.Err.Error() }
func (r *Retryable) Unwrap() error { return r.Err }

// newBackOff builds the retry policy for one item.
var newBackOff = func(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 5 * time.Minute
	return backoff.WithContext(b, ctx)
}

// Map applies fn to every item with at most workers calls in flight. The
// result order is the order of completion, not of input. Items whose final
// error wraps ErrSkip are silently dropped; any other terminal error cancels
// the remaining work and is returned.
func Map[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var (
		mu      sync.Mutex
		results []R
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, item := range items {
		item := item
		g.Go(func() error {
			var res R
			operation := func() error {
				r, err := fn(ctx, item)
				if err != nil {
					var re *Retryable
					if errors.As(err, &re) {
						return re.Err
					}
					return backoff.Permanent(err)
				}
				res = r
				return nil
			}

			err := backoff.Retry(operation, newBackOff(ctx))
			if err != nil {
				if errors.Is(err, ErrSkip) {
					return nil
				}
				return err
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
