package sched_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/vango-dev/vtree/pkg/loop"
	"github.com/vango-dev/vtree/pkg/sched"
)

func newTestScheduler(opts ...sched.Option) (*sched.Scheduler, *loop.Manual, *int) {
	m := loop.NewManual()
	renders := 0
	opts = append([]sched.Option{sched.WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	s := sched.New(m, func() { renders++ }, opts...)
	return s, m, &renders
}

func TestRequestLowWaitsForFrameBudget(t *testing.T) {
	s, m, renders := newTestScheduler()

	s.Request(sched.Low)
	if s.State() != sched.Queued {
		t.Fatalf("State() = %v, want queued", s.State())
	}
	m.Advance(10 * time.Millisecond)
	if *renders != 0 {
		t.Fatalf("rendered before the frame budget elapsed")
	}
	m.Advance(6 * time.Millisecond)
	if *renders != 1 {
		t.Errorf("renders = %d, want 1", *renders)
	}
	if s.State() != sched.Idle {
		t.Errorf("State() = %v, want idle", s.State())
	}
}

func TestRequestHighRunsOnIdle(t *testing.T) {
	s, m, renders := newTestScheduler()

	s.Request(sched.High)
	if p, ok := s.Pending(); !ok || p != sched.High {
		t.Fatalf("Pending() = %v, %v, want high", p, ok)
	}
	m.RunIdle()
	if *renders != 1 {
		t.Errorf("renders = %d, want 1", *renders)
	}
}

func TestRequestsCoalesce(t *testing.T) {
	s, m, renders := newTestScheduler()

	for i := 0; i < 5; i++ {
		s.Request(sched.Low)
	}
	s.Request(sched.High)
	s.Request(sched.High)
	s.Request(sched.Low)
	m.Advance(time.Second)

	if *renders != 1 {
		t.Errorf("renders = %d, want 1", *renders)
	}
	if m.Pending() != 0 {
		t.Errorf("loop still has %d callbacks", m.Pending())
	}
}

func TestHighPreemptsLow(t *testing.T) {
	s, m, renders := newTestScheduler()

	s.Request(sched.Low)
	s.Request(sched.High)
	if p, _ := s.Pending(); p != sched.High {
		t.Fatalf("Pending() = %v, want high", p)
	}
	if m.Pending() != 1 {
		t.Fatalf("loop has %d callbacks, want only the high one", m.Pending())
	}

	m.RunIdle()
	if *renders != 1 {
		t.Fatalf("renders = %d, want 1", *renders)
	}
	m.Advance(time.Second)
	if *renders != 1 {
		t.Errorf("cancelled low run still fired: renders = %d", *renders)
	}
}

func TestDeferFlushRunsOnce(t *testing.T) {
	s, m, renders := newTestScheduler()

	s.Defer()
	for i := 0; i < 10; i++ {
		s.Request(sched.Low)
	}
	if s.State() != sched.Deferred {
		t.Fatalf("State() = %v, want deferred", s.State())
	}
	if m.Pending() != 0 {
		t.Fatalf("low requests scheduled while deferred")
	}
	s.Flush()

	if *renders != 1 {
		t.Errorf("renders = %d, want 1", *renders)
	}
	m.Advance(time.Second)
	if *renders != 1 {
		t.Errorf("renders after advancing = %d, want 1", *renders)
	}
}

func TestFlushWithoutRequestsDoesNothing(t *testing.T) {
	s, _, renders := newTestScheduler()

	s.Defer()
	s.Flush()
	if *renders != 0 {
		t.Errorf("renders = %d, want 0", *renders)
	}
}

func TestDeferCapturesPendingRun(t *testing.T) {
	s, m, renders := newTestScheduler()

	s.Request(sched.Low)
	s.Defer()
	m.Advance(time.Second)
	if *renders != 0 {
		t.Fatalf("pending run fired while deferred")
	}
	s.Flush()
	if *renders != 1 {
		t.Errorf("renders = %d, want 1", *renders)
	}
}

func TestHighWhileDeferredEscalates(t *testing.T) {
	s, m, renders := newTestScheduler()

	s.Defer()
	s.Request(sched.High)
	if m.Pending() != 1 {
		t.Fatalf("high request while deferred scheduled %d callbacks, want 1", m.Pending())
	}
	s.Flush()
	if *renders != 1 {
		t.Errorf("renders = %d, want 1", *renders)
	}
	m.RunIdle()
	if *renders != 1 {
		t.Errorf("escalated run fired after flush: renders = %d", *renders)
	}
}

func TestNestedDefer(t *testing.T) {
	s, _, renders := newTestScheduler()

	s.Defer()
	s.Defer()
	s.Request(sched.Low)
	s.Flush()
	if *renders != 0 {
		t.Fatalf("inner flush rendered")
	}
	s.Flush()
	if *renders != 1 {
		t.Errorf("renders = %d, want 1", *renders)
	}
}

func TestCancel(t *testing.T) {
	s, m, renders := newTestScheduler()

	s.Request(sched.Low)
	s.Cancel()
	m.Advance(time.Second)
	if *renders != 0 {
		t.Errorf("renders = %d after Cancel, want 0", *renders)
	}

	s.Defer()
	s.Request(sched.Low)
	s.Cancel()
	if s.State() != sched.Idle {
		t.Errorf("State() = %v, want idle", s.State())
	}
	s.Flush()
	if *renders != 0 {
		t.Errorf("renders = %d, want 0", *renders)
	}
}

func TestFrameBudgetOption(t *testing.T) {
	s, m, renders := newTestScheduler(sched.WithFrameBudget(50 * time.Millisecond))

	s.Request(sched.Low)
	m.Advance(sched.DefaultFrameBudget)
	if *renders != 0 {
		t.Fatalf("rendered after the default budget")
	}
	m.Advance(50 * time.Millisecond)
	if *renders != 1 {
		t.Errorf("renders = %d, want 1", *renders)
	}
}

func TestRenderCanRequestAgain(t *testing.T) {
	m := loop.NewManual()
	var s *sched.Scheduler
	renders := 0
	s = sched.New(m, func() {
		renders++
		if renders == 1 {
			s.Request(sched.High)
		}
	}, sched.WithLogger(slog.New(slog.DiscardHandler)))

	s.Request(sched.High)
	m.RunIdle()
	if renders != 2 {
		t.Errorf("renders = %d, want 2", renders)
	}
	if s.Runs() != 2 {
		t.Errorf("Runs() = %d, want 2", s.Runs())
	}
}

// closedLoop refuses every callback, as a loop that is shutting down does.
type closedLoop struct {
	calls int
}

func (l *closedLoop) ScheduleIdle(func()) sched.TaskID {
	l.calls++
	return 0
}

func (l *closedLoop) ScheduleAfter(time.Duration, func()) sched.TaskID {
	l.calls++
	return 0
}

func (l *closedLoop) Cancel(sched.TaskID) {}

func TestRefusedCallbackRendersInline(t *testing.T) {
	l := &closedLoop{}
	var s *sched.Scheduler
	renders := 0
	s = sched.New(l, func() {
		renders++
		s.Request(sched.High)
	}, sched.WithLogger(slog.New(slog.DiscardHandler)))

	s.Request(sched.Low)
	if renders != 1 {
		t.Fatalf("renders = %d, want 1", renders)
	}
	if s.State() != sched.Idle {
		t.Errorf("State() = %v, want idle", s.State())
	}
	if _, ok := s.Pending(); ok {
		t.Error("Pending() reports a run the loop refused")
	}

	// Nothing is stuck: later requests render again instead of coalescing.
	s.Request(sched.High)
	if renders != 2 {
		t.Errorf("renders = %d, want 2", renders)
	}
	if l.calls != 4 {
		t.Errorf("loop calls = %d, want 4", l.calls)
	}
}

func TestRefusedCallbackWhileDeferredWaitsForFlush(t *testing.T) {
	l := &closedLoop{}
	renders := 0
	s := sched.New(l, func() { renders++ }, sched.WithLogger(slog.New(slog.DiscardHandler)))

	s.Defer()
	s.Request(sched.High)
	if renders != 0 {
		t.Fatalf("rendered inside a deferred burst")
	}
	s.Flush()
	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if s.State() != sched.Idle {
		t.Errorf("State() = %v, want idle", s.State())
	}
}
