// Package loop implements the single-goroutine task loop that serializes
// all document work of a render container.
//
// Tasks run one at a time, in submission order. A task posted while
// another task runs is executed after it (macrotask semantics), so several
// notifications issued from within one task always observe the same state.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrTerminated is returned when tasks are posted to a closed loop.
	ErrTerminated = errors.New("loop: terminated")

	// ErrReentrantDo is returned when Do is called from a loop task.
	ErrReentrantDo = errors.New("loop: Do called from within the loop")
)

// Dispatcher accepts tasks for serialized execution.
type Dispatcher interface {
	Post(task func()) error
	PostAfter(d time.Duration, task func())
	Do(ctx context.Context, fn func()) error
	InLoop() bool
}

// Loop runs posted tasks on its own goroutine.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake   chan struct{}
	done   chan struct{}
	logger *slog.Logger

	goroutineID atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to report panicking tasks.
func WithLogger(l *slog.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// New creates and starts a loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	started := make(chan struct{})
	go l.run(started)
	<-started
	return l
}

// Post enqueues task. It never blocks.
func (l *Loop) Post(task func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrTerminated
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	l.signal()
	return nil
}

// PostAfter enqueues task once d has elapsed.
func (l *Loop) PostAfter(d time.Duration, task func()) {
	if d <= 0 {
		_ = l.Post(task)
		return
	}
	time.AfterFunc(d, func() { _ = l.Post(task) })
}

// Do runs fn on the loop and waits for it to return.
// Calling Do from a loop task returns ErrReentrantDo.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if l.InLoop() {
		return ErrReentrantDo
	}
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InLoop reports whether the caller runs on the loop goroutine.
func (l *Loop) InLoop() bool {
	id := l.goroutineID.Load()
	return id != 0 && getGoroutineID() == id
}

// Close stops accepting tasks, runs the ones already queued and waits
// for the loop goroutine to exit.
func (l *Loop) Close(ctx context.Context) error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.signal()

	if l.InLoop() {
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Closed reports whether Close has been called.
func (l *Loop) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Done is closed when the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run(started chan<- struct{}) {
	defer close(l.done)
	l.goroutineID.Store(getGoroutineID())
	close(started)

	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			closed := l.closed
			l.mu.Unlock()
			if closed {
				return
			}
			<-l.wake
			continue
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.safeExecute(task)
	}
}

// safeExecute keeps the loop alive when a task panics.
func (l *Loop) safeExecute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked", "panic", r)
		}
	}()
	task()
}

// getGoroutineID returns the current goroutine's ID.
// Only used for re-entrancy detection.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Stack trace starts with "goroutine NNN ["
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
