// Package dataflow provides small channel-based pipeline stages.
package dataflow

import (
	"context"
	"sync"
	"time"
)

// Stream is a read-only channel of messages.
type Stream <-chan interface{}

// From creates a stream from a slice of data.
func From(ctx context.Context, items ...interface{}) Stream {
	out := make(chan interface{}, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// attempt runs fn once plus up to cfg.maxRetries retries. It returns
// ctx.Err() when cancelled while backing off.
func attempt(ctx context.Context, cfg *config, fn func() error) error {
	err := fn()
	for i := 1; err != nil && i <= cfg.maxRetries; i++ {
		if cfg.backoff != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.backoff(i)):
			}
		}
		err = fn()
	}
	return err
}

// Map transforms the stream using fn with cfg.workers goroutines. Items
// whose fn fails are dropped after the error handler has seen the error.
func Map(ctx context.Context, input Stream, fn func(interface{}) (interface{}, error), opts ...Option) Stream {
	cfg := newConfig(opts)

	out := make(chan interface{}, cfg.bufferSize)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}

				var res interface{}
				err := attempt(ctx, cfg, func() error {
					var err error
					res, err = fn(msg)
					return err
				})
				if err != nil {
					if cfg.errorHandler != nil {
						cfg.errorHandler(err)
					}
					continue
				}

				select {
				case <-ctx.Done():
					return
				case out <- res:
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Batch groups consecutive items into []interface{} chunks of at most size
// items. The last chunk may be shorter.
func Batch(ctx context.Context, input Stream, size int) Stream {
	if size < 1 {
		size = 1
	}
	out := make(chan interface{})
	go func() {
		defer close(out)
		buf := make([]interface{}, 0, size)
		flush := func() bool {
			if len(buf) == 0 {
				return true
			}
			select {
			case <-ctx.Done():
				return false
			case out <- buf:
			}
			buf = make([]interface{}, 0, size)
			return true
		}
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					flush()
					return
				}
				buf = append(buf, msg)
				if len(buf) == size && !flush() {
					return
				}
			}
		}
	}()
	return out
}

// ForEach executes fn for every item in the stream and blocks until the
// stream is exhausted or ctx is cancelled. It returns the first error not
// swallowed by the error handler.
func ForEach(ctx context.Context, input Stream, fn func(interface{}) error, opts ...Option) error {
	cfg := newConfig(opts)

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}

				err := attempt(ctx, cfg, func() error { return fn(msg) })
				if err == nil {
					continue
				}
				if cfg.errorHandler != nil && cfg.errorHandler(err) {
					continue
				}
				errOnce.Do(func() { firstErr = err })
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return firstErr
}
