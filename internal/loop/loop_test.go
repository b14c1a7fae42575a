package loop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	l := New()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = l.Close(ctx)
	})
	return l
}

func TestPostRunsInOrder(t *testing.T) {
	l := newTestLoop(t)

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		if err := l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Post() = %v", err)
		}
	}
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do() = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 50 {
		t.Fatalf("ran %d tasks, want 50", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task order: got[%d] = %d", i, v)
		}
	}
}

func TestTaskPostedDuringTaskRunsAfter(t *testing.T) {
	l := newTestLoop(t)

	var order []string
	err := l.Do(context.Background(), func() {
		_ = l.Post(func() { order = append(order, "inner") })
		order = append(order, "outer")
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = l.Do(context.Background(), func() {})
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v, want [outer inner]", order)
	}
}

func TestInLoop(t *testing.T) {
	l := newTestLoop(t)
	if l.InLoop() {
		t.Error("InLoop() = true outside the loop")
	}
	var inside bool
	_ = l.Do(context.Background(), func() { inside = l.InLoop() })
	if !inside {
		t.Error("InLoop() = false inside a task")
	}
}

func TestReentrantDo(t *testing.T) {
	l := newTestLoop(t)
	var err error
	_ = l.Do(context.Background(), func() {
		err = l.Do(context.Background(), func() {})
	})
	if !errors.Is(err, ErrReentrantDo) {
		t.Errorf("nested Do() = %v, want ErrReentrantDo", err)
	}
}

func TestPanicDoesNotKillLoop(t *testing.T) {
	l := newTestLoop(t)
	_ = l.Post(func() { panic("boom") })

	ran := false
	if err := l.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("loop stopped after a panicking task")
	}
}

func TestPostAfter(t *testing.T) {
	l := newTestLoop(t)
	done := make(chan struct{})
	l.PostAfter(5*time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("delayed task did not run")
	}
}

func TestCloseRejectsNewTasks(t *testing.T) {
	l := New()
	ran := make(chan struct{})
	_ = l.Post(func() { close(ran) })

	if err := l.Close(context.Background()); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	select {
	case <-ran:
	default:
		t.Error("queued task should run before the loop exits")
	}
	if !l.Closed() {
		t.Error("Closed() = false")
	}
	if err := l.Post(func() {}); !errors.Is(err, ErrTerminated) {
		t.Errorf("Post() after Close = %v, want ErrTerminated", err)
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrTerminated) {
		t.Errorf("Do() after Close = %v, want ErrTerminated", err)
	}
}
