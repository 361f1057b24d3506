package loop

import (
	"sort"
	"time"

	"github.com/vango-dev/vtree/pkg/sched"
)

// Manual is a deterministic loop driven by hand. Time only moves when
// Advance is called; idle callbacks only run on RunIdle or Advance.
// It is meant for tests and headless drivers, from a single goroutine.
type Manual struct {
	now    time.Duration
	nextID sched.TaskID
	seq    uint64
	idle   []manualTask
	timers []manualTask
}

type manualTask struct {
	id  sched.TaskID
	at  time.Duration
	seq uint64
	fn  func()
}

var _ Driver = (*Manual)(nil)

// NewManual creates a Manual loop at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// ScheduleIdle implements sched.Loop.
func (m *Manual) ScheduleIdle(fn func()) sched.TaskID {
	id := m.newID()
	m.idle = append(m.idle, manualTask{id: id, fn: fn})
	return id
}

// ScheduleAfter implements sched.Loop.
func (m *Manual) ScheduleAfter(d time.Duration, fn func()) sched.TaskID {
	id := m.newID()
	m.seq++
	m.timers = append(m.timers, manualTask{id: id, at: m.now + d, seq: m.seq, fn: fn})
	return id
}

// Cancel implements sched.Loop.
func (m *Manual) Cancel(id sched.TaskID) {
	m.idle = removeTask(m.idle, id)
	m.timers = removeTask(m.timers, id)
}

// Submit queues fn as an idle callback.
func (m *Manual) Submit(fn func()) error {
	m.ScheduleIdle(fn)
	return nil
}

// Every runs fn every d of virtual time until stop is called.
func (m *Manual) Every(d time.Duration, fn func()) (stop func(), err error) {
	var id sched.TaskID
	stopped := false
	var tick func()
	tick = func() {
		if stopped {
			return
		}
		fn()
		if !stopped {
			id = m.ScheduleAfter(d, tick)
		}
	}
	id = m.ScheduleAfter(d, tick)
	return func() {
		stopped = true
		m.Cancel(id)
	}, nil
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of scheduled callbacks.
func (m *Manual) Pending() int {
	return len(m.idle) + len(m.timers)
}

// RunIdle runs idle callbacks until none are left, including ones queued
// by the callbacks themselves. It returns how many ran.
func (m *Manual) RunIdle() int {
	n := 0
	for len(m.idle) > 0 {
		t := m.idle[0]
		m.idle = m.idle[1:]
		t.fn()
		n++
	}
	return n
}

// Advance moves virtual time forward by d, firing due timers in deadline
// order and draining idle callbacks after each one.
func (m *Manual) Advance(d time.Duration) int {
	n := m.RunIdle()
	end := m.now + d
	for {
		i := m.nextDue(end)
		if i < 0 {
			break
		}
		t := m.timers[i]
		m.timers = append(m.timers[:i], m.timers[i+1:]...)
		if t.at > m.now {
			m.now = t.at
		}
		t.fn()
		n++
		n += m.RunIdle()
	}
	m.now = end
	return n
}

func (m *Manual) nextDue(end time.Duration) int {
	if len(m.timers) == 0 {
		return -1
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	if m.timers[0].at > end {
		return -1
	}
	return 0
}

func (m *Manual) newID() sched.TaskID {
	m.nextID++
	return m.nextID
}

func removeTask(tasks []manualTask, id sched.TaskID) []manualTask {
	for i, t := range tasks {
		if t.id == id {
			return append(tasks[:i], tasks[i+1:]...)
		}
	}
	return tasks
}
