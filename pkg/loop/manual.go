package loop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by the caller. Time only moves
// through Advance; frames only run through Frame. Every step drains the
// microtask queue before returning.
//
// Manual is not safe for concurrent use.
type Manual struct {
	now        time.Time
	microtasks []func()
	frames     []*manualEntry
	timers     []*manualEntry
	seq        uint64
}

type manualEntry struct {
	at        time.Time
	seq       uint64
	fn        func()
	cancelled bool
}

// NewManual returns a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time { return m.now }

// QueueMicrotask implements Scheduler.
func (m *Manual) QueueMicrotask(fn func()) {
	m.microtasks = append(m.microtasks, fn)
}

// RequestFrame implements Scheduler.
func (m *Manual) RequestFrame(fn func()) (cancel func()) {
	m.seq++
	e := &manualEntry{seq: m.seq, fn: fn}
	m.frames = append(m.frames, e)
	return func() { e.cancelled = true }
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	m.seq++
	e := &manualEntry{at: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, e)
	return func() { e.cancelled = true }
}

// Run executes fn as a task and drains microtasks.
func (m *Manual) Run(fn func()) {
	fn()
	m.Flush()
}

// Flush drains the microtask queue, including microtasks queued while
// draining.
func (m *Manual) Flush() {
	for len(m.microtasks) > 0 {
		fn := m.microtasks[0]
		m.microtasks = m.microtasks[1:]
		fn()
	}
}

// Frame runs the frame callbacks requested before the call. Callbacks
// requested during the frame wait for the next one. It reports how many
// callbacks ran.
func (m *Manual) Frame() int {
	m.Flush()
	frames := m.frames
	m.frames = nil
	ran := 0
	for _, e := range frames {
		if e.cancelled {
			continue
		}
		e.cancelled = true
		e.fn()
		m.Flush()
		ran++
	}
	return ran
}

// PendingFrames reports how many uncancelled frame callbacks are waiting.
func (m *Manual) PendingFrames() int {
	n := 0
	for _, e := range m.frames {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// PendingTimers reports how many uncancelled timers are waiting.
func (m *Manual) PendingTimers() int {
	n := 0
	for _, e := range m.timers {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due timers in deadline order
// with the clock set to each deadline.
func (m *Manual) Advance(d time.Duration) {
	m.Flush()
	end := m.now.Add(d)
	for {
		e := m.nextTimer(end)
		if e == nil {
			break
		}
		if e.at.After(m.now) {
			m.now = e.at
		}
		e.cancelled = true
		e.fn()
		m.Flush()
	}
	m.now = end
	m.compact()
}

func (m *Manual) nextTimer(end time.Time) *manualEntry {
	live := m.timers[:0]
	for _, e := range m.timers {
		if !e.cancelled {
			live = append(live, e)
		}
	}
	m.timers = live
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	if len(m.timers) == 0 || m.timers[0].at.After(end) {
		return nil
	}
	return m.timers[0]
}

func (m *Manual) compact() {
	live := m.timers[:0]
	for _, e := range m.timers {
		if !e.cancelled {
			live = append(live, e)
		}
	}
	m.timers = live
}
