package session

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned for store operations submitted after Close.
var ErrClosed = errors.New("session controller closed")

// worker runs store operations one at a time on a background goroutine.
// Submitted operations run in submission order.
type worker struct {
	mu      sync.RWMutex
	closed  bool
	pending chan func()
	done    chan struct{}
}

func newWorker() *worker {
	w := &worker{
		pending: make(chan func(), 16),
		done:    make(chan struct{}),
	}
	go w.processLoop()
	return w
}

func (w *worker) processLoop() {
	defer close(w.done)
	for job := range w.pending {
		job()
	}
}

func (w *worker) submit(ctx context.Context, job func()) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrClosed
	}
	select {
	case w.pending <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting work and waits for queued operations to finish.
func (w *worker) close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.pending)
	}
	w.mu.Unlock()
	<-w.done
}

// run executes fn on the worker and waits for its result. If ctx is done
// first, run returns ctx.Err() but fn still runs to completion with a
// context detached from ctx's cancellation.
func run[T any](ctx context.Context, w *worker, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	var zero T

	opCtx := context.WithoutCancel(ctx)
	ch := make(chan result, 1)
	err := w.submit(ctx, func() {
		v, err := fn(opCtx)
		ch <- result{v, err}
	})
	if err != nil {
		return zero, err
	}

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// exec is run for operations with no result value.
func exec(ctx context.Context, w *worker, fn func(context.Context) error) error {
	_, err := run(ctx, w, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
