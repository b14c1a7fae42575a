package async

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResolved(t *testing.T) {
	p := Resolved(42)
	if !p.Settled() {
		t.Fatal("Resolved promise should be settled")
	}
	v, err := p.Result()
	if err != nil || v != 42 {
		t.Errorf("Result() = %v, %v; want 42, nil", v, err)
	}
}

func TestRejected(t *testing.T) {
	boom := errors.New("boom")
	p := Rejected[int](boom)
	if _, err := p.Result(); !errors.Is(err, boom) {
		t.Errorf("Result() err = %v, want boom", err)
	}
}

func TestNewSettlesOnce(t *testing.T) {
	p, resolve, reject := New[string]()
	if p.Settled() {
		t.Fatal("new promise should not be settled")
	}
	if _, err := p.Result(); !errors.Is(err, ErrUnsettled) {
		t.Errorf("Result() on unsettled = %v, want ErrUnsettled", err)
	}

	resolve("first")
	resolve("second")
	reject(errors.New("late"))

	v, err := p.Result()
	if err != nil || v != "first" {
		t.Errorf("Result() = %q, %v; want first, nil", v, err)
	}
}

func TestRejectNil(t *testing.T) {
	p, _, reject := New[int]()
	reject(nil)
	if _, err := p.Result(); err == nil {
		t.Error("reject(nil) should still settle with an error")
	}
}

func TestGo(t *testing.T) {
	p := Go(func() (int, error) { return 7, nil })
	v, err := p.Await(context.Background())
	if err != nil || v != 7 {
		t.Errorf("Await() = %v, %v", v, err)
	}

	failing := Go(func() (int, error) { return 0, errors.New("nope") })
	if _, err := failing.Await(context.Background()); err == nil {
		t.Error("expected error from failing Go")
	}
}

func TestGoPanic(t *testing.T) {
	p := Go(func() (int, error) { panic("kaboom") })
	_, err := p.Await(context.Background())
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if pe.Error() != "async: panic: kaboom" {
		t.Errorf("PanicError = %q", pe.Error())
	}
}

func TestAwaitContextCancel(t *testing.T) {
	p, _, _ := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Await() err = %v, want deadline exceeded", err)
	}
}

func TestWaitAll(t *testing.T) {
	a, resolveA, _ := New[int]()
	b, _, rejectB := New[int]()

	go func() {
		time.Sleep(5 * time.Millisecond)
		resolveA(1)
		rejectB(errors.New("b failed"))
	}()

	if err := WaitAll(context.Background(), a, b); err != nil {
		t.Fatalf("WaitAll() = %v; a rejection is not a join failure", err)
	}
	if !AllSettled(a, b) {
		t.Error("AllSettled() = false after WaitAll")
	}
	if _, err := b.Result(); err == nil {
		t.Error("b should be rejected")
	}
}

func TestWaitAllEmptyAndCancel(t *testing.T) {
	if err := WaitAll(context.Background()); err != nil {
		t.Errorf("WaitAll() with no items = %v", err)
	}

	p, _, _ := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitAll(ctx, p); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitAll() err = %v, want canceled", err)
	}
}
