// Package loop provides the cooperative scheduling used by the runtime and
// the reconciler: a microtask queue, paint-frame callbacks and timers, all
// delivered on a single logical thread.
//
// Loop runs callbacks on one goroutine in real time. Manual advances a
// virtual clock on demand and is used by tests and headless rendering.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Scheduler is the set of suspension points available to loop callbacks.
// All methods must be called from the loop's own thread.
type Scheduler interface {
	// Now returns the scheduler's clock.
	Now() time.Time
	// QueueMicrotask runs fn after the current task, before any frame or timer.
	QueueMicrotask(fn func())
	// RequestFrame runs fn on the next paint frame.
	RequestFrame(fn func()) (cancel func())
	// AfterFunc runs fn once d has elapsed.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// DefaultQueueSize is the capacity of the cross-goroutine task queue.
const DefaultQueueSize = 256

// ErrQueueFull is returned by Post when the task queue has no capacity.
var ErrQueueFull = errors.New("loop: task queue full")

// ErrClosed is returned by Post after Close.
var ErrClosed = errors.New("loop: closed")

// Loop executes tasks on a single goroutine. Tasks come from Post (any
// goroutine), timers and frame callbacks. Microtasks queued by a task run
// before the next task is taken.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	closeMu  sync.Once
	interval time.Duration
	logger   *slog.Logger

	// Loop goroutine only.
	microtasks []func()
	frames     map[uint64]func()
	frameOrder []uint64
	nextFrame  uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithFrameInterval sets the interval between paint frames.
func WithFrameInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithQueueSize sets the capacity of the task queue.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan func(), n)
		}
	}
}

// WithLogger sets the logger used for task panics and dropped tasks.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loop. Call Run to start processing.
func New(opts ...Option) *Loop {
	l := &Loop{
		tasks:    make(chan func(), DefaultQueueSize),
		done:     make(chan struct{}),
		interval: DefaultFrameInterval,
		logger:   slog.Default(),
		frames:   make(map[uint64]func()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn to run on the loop. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	default:
		l.logger.Warn("task queue full, dropping task")
		return ErrQueueFull
	}
}

// Close stops the loop. Pending tasks are discarded.
func (l *Loop) Close() {
	l.closeMu.Do(func() { close(l.done) })
}

// Done returns a channel that's closed when the loop is closed.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run processes tasks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case fn := <-l.tasks:
			l.execute(fn)

		case <-ticker.C:
			l.runFrames()

		case <-ctx.Done():
			l.Close()
			return ctx.Err()

		case <-l.done:
			return nil
		}
	}
}

// Now returns the wall clock.
func (l *Loop) Now() time.Time { return time.Now() }

// QueueMicrotask implements Scheduler.
func (l *Loop) QueueMicrotask(fn func()) {
	l.microtasks = append(l.microtasks, fn)
}

// RequestFrame implements Scheduler.
func (l *Loop) RequestFrame(fn func()) (cancel func()) {
	l.nextFrame++
	id := l.nextFrame
	l.frames[id] = fn
	l.frameOrder = append(l.frameOrder, id)
	return func() { delete(l.frames, id) }
}

// AfterFunc implements Scheduler. The callback is posted back onto the loop
// when the timer fires, so it never runs concurrently with other tasks.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	var cancelled bool
	t := time.AfterFunc(d, func() {
		_ = l.Post(func() {
			if !cancelled {
				fn()
			}
		})
	})
	return func() {
		cancelled = true
		t.Stop()
	}
}

func (l *Loop) runFrames() {
	if len(l.frameOrder) == 0 {
		return
	}
	order := l.frameOrder
	l.frameOrder = nil
	for _, id := range order {
		fn, ok := l.frames[id]
		if !ok {
			continue
		}
		delete(l.frames, id)
		l.execute(fn)
	}
}

// execute runs one task followed by every microtask it queued.
func (l *Loop) execute(fn func()) {
	l.safely(fn)
	for len(l.microtasks) > 0 {
		next := l.microtasks[0]
		l.microtasks = l.microtasks[1:]
		l.safely(next)
	}
}

func (l *Loop) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
