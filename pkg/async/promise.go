// Package async provides the single-assignment Promise used for lazily
// loaded components and asynchronous subtrees.
//
// A Promise settles exactly once, either with a value or with an error.
// Waiting never runs user code: continuations are scheduled by whoever
// owns the waiting side (the render loop), which keeps all document work
// on one goroutine.
package async

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrUnsettled is returned by Result when the promise has not settled yet.
var ErrUnsettled = errors.New("async: promise not settled")

// Awaitable is anything that can be waited on.
type Awaitable interface {
	// Done is closed once the value is available.
	Done() <-chan struct{}
}

// Promise is a value that becomes available later.
type Promise[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// New returns an unsettled promise and the functions that settle it.
// Only the first call to either function has an effect.
func New[T any]() (p *Promise[T], resolve func(T), reject func(error)) {
	p = &Promise[T]{done: make(chan struct{})}
	return p, p.resolve, p.reject
}

// Resolved returns a promise already settled with v.
func Resolved[T any](v T) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), val: v}
	p.once.Do(func() { close(p.done) })
	return p
}

// Rejected returns a promise already settled with err.
func Rejected[T any](err error) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), err: err}
	p.once.Do(func() { close(p.done) })
	return p
}

// Go runs fn on a new goroutine and settles the promise with its result.
// A panic inside fn rejects the promise.
func Go[T any](fn func() (T, error)) *Promise[T] {
	p, resolve, reject := New[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				reject(&PanicError{Value: r})
			}
		}()
		v, err := fn()
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	}()
	return p
}

func (p *Promise[T]) resolve(v T) {
	p.once.Do(func() {
		p.val = v
		close(p.done)
	})
}

func (p *Promise[T]) reject(err error) {
	if err == nil {
		err = errors.New("async: rejected with nil error")
	}
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the promise has a value or an error.
func (p *Promise[T]) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result returns the settled value without blocking.
func (p *Promise[T]) Result() (T, error) {
	if !p.Settled() {
		var zero T
		return zero, ErrUnsettled
	}
	return p.val, p.err
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// PanicError reports a panic recovered while producing a value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: panic: %v", e.Value)
}

// WaitAll blocks until every awaitable is done or ctx is cancelled.
// Settled values are read by the caller afterwards; WaitAll only joins.
func WaitAll(ctx context.Context, items ...Awaitable) error {
	if len(items) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, it := range items {
		it := it
		g.Go(func() error {
			select {
			case <-it.Done():
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	return g.Wait()
}

// AllSettled reports whether every awaitable is already done.
func AllSettled(items ...Awaitable) bool {
	for _, it := range items {
		select {
		case <-it.Done():
		default:
			return false
		}
	}
	return true
}
