package loop

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestManualIdleAndTimers(t *testing.T) {
	m := NewManual()
	var got []string

	m.ScheduleAfter(20*time.Millisecond, func() { got = append(got, "t20") })
	m.ScheduleAfter(10*time.Millisecond, func() {
		got = append(got, "t10")
		m.ScheduleIdle(func() { got = append(got, "idle-from-t10") })
	})
	m.ScheduleIdle(func() { got = append(got, "idle") })

	if n := m.Pending(); n != 3 {
		t.Fatalf("Pending() = %d, want 3", n)
	}
	m.Advance(15 * time.Millisecond)
	m.Advance(5 * time.Millisecond)

	want := []string{"idle", "t10", "idle-from-t10", "t20"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if m.Now() != 20*time.Millisecond {
		t.Errorf("Now() = %v, want 20ms", m.Now())
	}
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	fired := 0
	id := m.ScheduleIdle(func() { fired++ })
	tid := m.ScheduleAfter(time.Millisecond, func() { fired++ })

	m.Cancel(id)
	m.Cancel(tid)
	m.Cancel(999)
	m.Advance(time.Second)

	if fired != 0 {
		t.Errorf("cancelled callbacks fired %d times", fired)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestManualEvery(t *testing.T) {
	m := NewManual()
	ticks := 0
	stop, err := m.Every(10*time.Millisecond, func() { ticks++ })
	if err != nil {
		t.Fatal(err)
	}

	m.Advance(35 * time.Millisecond)
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
	stop()
	m.Advance(100 * time.Millisecond)
	if ticks != 3 {
		t.Errorf("ticks after stop = %d, want 3", ticks)
	}
}

func TestEventLoopSchedules(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	results := make(chan string, 4)
	if err := e.Submit(func() {
		e.ScheduleIdle(func() { results <- "idle" })
		e.ScheduleAfter(5*time.Millisecond, func() { results <- "timer" })
		cancelled := e.ScheduleAfter(time.Millisecond, func() { results <- "cancelled" })
		e.Cancel(cancelled)
	}); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	var got []string
	for len(got) < 2 {
		select {
		case r := <-results:
			got = append(got, r)
		case <-ctx.Done():
			t.Fatalf("timed out, got %v", got)
		}
	}
	if diff := cmp.Diff([]string{"idle", "timer"}, got); diff != "" {
		t.Errorf("callbacks mismatch (-want +got):\n%s", diff)
	}

	if err := e.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Run() error: %v", err)
	}
	select {
	case r := <-results:
		t.Errorf("unexpected callback %q", r)
	default:
	}
}
