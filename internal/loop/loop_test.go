package loop

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLoop_RunsInOrder(t *testing.T) {
	l := New()
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(l.Stop)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("ran %d closures, want 5", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("got[%d] = %d", i, v)
		}
	}
}

func TestLoop_PostFromGoroutines(t *testing.T) {
	l := New()
	const n = 100
	count := 0

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() {
				count++
				if count == n {
					l.Stop()
				}
			})
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	wg.Wait()
	if count != n {
		t.Errorf("count = %d, want %d", count, n)
	}
}

func TestLoop_ContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := l.Run(ctx); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestLoop_PostAfterStop(t *testing.T) {
	l := New()
	l.Stop()
	ran := false
	l.Post(func() { ran = true })
	if err := l.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Error("closure posted after Stop ran")
	}
}

func TestScheduler_Fires(t *testing.T) {
	l := New()
	s := NewScheduler(l)
	var ev *Event
	l.Post(func() {
		ev = s.Schedule(10*time.Millisecond, l.Stop)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ev.Fired() {
		t.Error("event did not fire")
	}
}

func TestScheduler_Cancel(t *testing.T) {
	l := New()
	s := NewScheduler(l)
	fired := false

	l.Post(func() {
		ev := s.Schedule(10*time.Millisecond, func() { fired = true })
		ev.Cancel()
		ev.Cancel()
		s.Schedule(50*time.Millisecond, l.Stop)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fired {
		t.Error("cancelled event fired")
	}
}

func TestScheduler_CancelAfterQueued(t *testing.T) {
	l := New()
	s := NewScheduler(l)
	fired := false

	ev := s.Schedule(0, func() { fired = true })
	// Let the timer post its closure, then cancel before the loop runs it.
	time.Sleep(20 * time.Millisecond)
	ev.Cancel()
	l.Post(l.Stop)

	if err := l.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fired || ev.Fired() {
		t.Error("event fired after Cancel")
	}
}
