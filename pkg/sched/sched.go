// Package sched coalesces render requests into single render runs.
//
// A Scheduler has two lanes. High priority runs as soon as the event loop
// is idle; low priority runs after a frame budget (16ms by default). Any
// number of requests made before the run coalesce into one render.
//
// Defer and Flush bracket a burst of work: requests made in between are
// remembered and Flush runs the render synchronously exactly once.
// Bursts nest; only the outermost Flush renders.
//
//	s.Defer()
//	for _, c := range children {
//	    c.Send(tick) // each may call s.Request(sched.Low)
//	}
//	s.Flush() // one render
package sched

import (
	"log/slog"
	"time"

	"github.com/vango-dev/vtree/pkg/telemetry"
)

// DefaultFrameBudget is the delay of a low priority run.
const DefaultFrameBudget = 16 * time.Millisecond

// TaskID identifies a callback scheduled on a Loop. Zero is never a valid ID.
type TaskID uint64

// Loop is the event loop binding a Scheduler needs.
// All callbacks must run on the loop goroutine.
type Loop interface {
	// ScheduleIdle runs fn once the loop has finished its current work.
	ScheduleIdle(fn func()) TaskID
	// ScheduleAfter runs fn after d.
	ScheduleAfter(d time.Duration, fn func()) TaskID
	// Cancel cancels a scheduled callback. Unknown or fired IDs are ignored.
	Cancel(id TaskID)
}

// Priority is a render lane.
type Priority uint8

const (
	Low Priority = iota
	High
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// State is the scheduler state.
type State uint8

const (
	Idle State = iota
	Queued
	Deferred
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Queued:
		return "queued"
	case Deferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Scheduler coalesces render requests for one render function.
// It is not safe for concurrent use; call it from the loop goroutine.
type Scheduler struct {
	loop   Loop
	render func()

	budget  time.Duration
	metrics *telemetry.Metrics
	logger  *slog.Logger

	// pending callback, if any
	task     TaskID
	priority Priority
	queued   bool
	gen      uint64

	depth     int  // nesting of Defer
	requested bool // requests made while deferred
	inline    bool // rendering synchronously after the loop refused a callback
	runs      int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithFrameBudget sets the delay of low priority runs.
func WithFrameBudget(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.budget = d
		}
	}
}

// WithMetrics records request outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scheduler that calls render on loop.
func New(loop Loop, render func(), opts ...Option) *Scheduler {
	s := &Scheduler{
		loop:   loop,
		render: render,
		budget: DefaultFrameBudget,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request asks for a render at priority p.
//
// Requests at the same or lower priority than the pending one are
// coalesced. A high request replaces a pending low one. While deferred, a
// low request is only recorded for Flush; a high request still schedules
// an idle run.
func (s *Scheduler) Request(p Priority) {
	if s.depth > 0 {
		s.requested = true
		if p == Low {
			s.observe(p, "deferred")
			return
		}
		if s.queued && s.priority == High {
			s.observe(p, "coalesced")
			return
		}
		s.cancelPending()
		s.enqueue(High, "escalated")
		return
	}

	if s.queued {
		if p <= s.priority {
			s.observe(p, "coalesced")
			return
		}
		s.cancelPending()
		s.enqueue(p, "preempted")
		return
	}

	s.enqueue(p, "scheduled")
}

// enqueue schedules a run at priority p. When the loop refuses the callback
// (it returned TaskID 0, typically because it is shutting down) nothing is
// queued: a deferred request is left for Flush, otherwise the render runs
// synchronously. Requests made by that inline render are dropped.
func (s *Scheduler) enqueue(p Priority, outcome string) {
	if s.schedule(p) {
		s.observe(p, outcome)
		return
	}
	if s.depth > 0 {
		s.requested = true
		s.observe(p, "deferred")
		return
	}
	if s.inline {
		s.observe(p, "dropped")
		return
	}
	s.observe(p, "inline")
	s.inline = true
	defer func() { s.inline = false }()
	s.requested = false
	s.run()
}

// Defer suspends scheduling until the matching Flush. A pending run is
// cancelled and remembered.
func (s *Scheduler) Defer() {
	if s.depth == 0 && s.queued {
		s.cancelPending()
		s.requested = true
	}
	s.depth++
}

// Flush ends a Defer. When the outermost burst ends, the render runs
// synchronously once if anything was requested or pending. Flush without a
// matching Defer runs a pending render immediately.
func (s *Scheduler) Flush() {
	if s.depth > 0 {
		s.depth--
		if s.depth > 0 {
			return
		}
	}
	if !s.requested && !s.queued {
		return
	}
	s.cancelPending()
	s.requested = false
	s.run()
}

// Cancel drops all pending work and returns to Idle.
func (s *Scheduler) Cancel() {
	s.cancelPending()
	s.depth = 0
	s.requested = false
}

// State returns the current state.
func (s *Scheduler) State() State {
	switch {
	case s.depth > 0:
		return Deferred
	case s.queued:
		return Queued
	default:
		return Idle
	}
}

// Pending returns the priority of the pending run, if any.
func (s *Scheduler) Pending() (Priority, bool) {
	return s.priority, s.queued
}

// Runs returns how many times the render function has run.
func (s *Scheduler) Runs() int {
	return s.runs
}

// schedule registers a run with the loop and reports whether the loop
// accepted it.
func (s *Scheduler) schedule(p Priority) bool {
	s.gen++
	gen := s.gen
	fire := func() {
		if gen != s.gen || !s.queued {
			return
		}
		s.queued = false
		s.task = 0
		s.requested = false
		s.run()
	}
	if p == High {
		s.task = s.loop.ScheduleIdle(fire)
	} else {
		s.task = s.loop.ScheduleAfter(s.budget, fire)
	}
	if s.task == 0 {
		s.gen++
		s.queued = false
		s.logger.Warn("sched: loop refused callback", "priority", p)
		return false
	}
	s.priority = p
	s.queued = true
	return true
}

func (s *Scheduler) cancelPending() {
	if !s.queued {
		return
	}
	s.loop.Cancel(s.task)
	s.gen++
	s.task = 0
	s.queued = false
}

func (s *Scheduler) run() {
	s.runs++
	s.render()
}

func (s *Scheduler) observe(p Priority, outcome string) {
	s.metrics.ObserveSchedule(p.String(), outcome)
	s.logger.Debug("sched: request", "priority", p, "outcome", outcome)
}
