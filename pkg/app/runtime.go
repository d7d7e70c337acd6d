package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/plop/internal/errors"
	"github.com/vango-dev/plop/pkg/loop"
	"github.com/vango-dev/plop/pkg/reconcile"
	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

// DefaultTracerName names the tracer used when no tracer is configured.
const DefaultTracerName = "plop"

// Option configures Start.
type Option func(*options)

type options struct {
	scheduler loop.Scheduler
	remote    bool
	offset    int
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
	onRender  func(*vdom.Patch)
}

// WithScheduler sets the scheduler the runtime renders and runs effects on.
// Start fails with ErrNotInteractive without one.
func WithScheduler(s loop.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithRemoteEvents makes event payloads plain maps of selected fields
// instead of live *surface.Event values.
func WithRemoteEvents(on bool) Option {
	return func(o *options) { o.remote = on }
}

// WithOffset reserves the first n children of the root for other content.
func WithOffset(n int) Option {
	return func(o *options) { o.offset = n }
}

// WithLogger sets the logger. A runtime_id attribute is added.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics reports renders and events to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer sets the tracer for render spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithRenderObserver calls fn with every patch after it is applied,
// including empty ones.
func WithRenderObserver(fn func(*vdom.Patch)) Option {
	return func(o *options) { o.onRender = fn }
}

// Runtime runs an App against a surface. All methods must be called from
// the scheduler's thread.
type Runtime[Model, Msg any] struct {
	id         string
	app        App[Model, Msg]
	root       surface.Node
	sched      loop.Scheduler
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	onRender   func(*vdom.Patch)

	model  Model
	tree   *vdom.VNode
	events *vdom.Registry

	queue       []Msg
	shouldQueue bool
	shouldFlush bool
	beforePaint []func(Actions[Msg])
	afterPaint  []func(Actions[Msg])
	cancelFrame func()
}

// Start mounts app on the node matching selector. Existing children of the
// node are adopted as the initial tree, the app is initialised and the first
// view is rendered before Start returns.
func Start[Model, Msg any](app App[Model, Msg], doc surface.Document, selector string, opts ...Option) (*Runtime[Model, Msg], error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if doc == nil || o.scheduler == nil {
		return nil, errors.New("E100").
			WithSuggestion("Pass a document and a scheduler via app.WithScheduler")
	}
	root := doc.QuerySelector(selector)
	if root == nil {
		return nil, errors.New("E101").
			WithDetailf("No node matches %q.", selector).
			WithSuggestion("Render a mount element before starting the runtime")
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(DefaultTracerName)
	}

	id := ulid.Make().String()
	rt := &Runtime[Model, Msg]{
		id:       id,
		app:      app,
		root:     root,
		sched:    o.scheduler,
		logger:   o.logger.With("runtime_id", id),
		metrics:  o.metrics,
		tracer:   o.tracer,
		onRender: o.onRender,
		events:   vdom.NewRegistry(),
	}
	env := reconcile.Env{Root: root, Document: doc, Scheduler: o.scheduler}
	rt.reconciler = reconcile.New(env, rt.handleEvent,
		reconcile.WithRemoteEvents(o.remote),
		reconcile.WithOffset(o.offset),
		reconcile.WithLogger(rt.logger),
	)
	rt.tree = rt.reconciler.Virtualise()

	model, effects := app.Init()
	rt.model = model
	rt.shouldFlush = true
	rt.tick(effects)

	rt.logger.Debug("runtime started", "selector", selector)
	return rt, nil
}

// ID returns the runtime's unique id.
func (rt *Runtime[Model, Msg]) ID() string { return rt.id }

// Model returns the current model.
func (rt *Runtime[Model, Msg]) Model() Model { return rt.model }

// Tree returns the last rendered view.
func (rt *Runtime[Model, Msg]) Tree() *vdom.VNode { return rt.tree }

// Root implements Actions.
func (rt *Runtime[Model, Msg]) Root() surface.Node { return rt.root }

// SetOffset changes how many leading children of the root are skipped.
func (rt *Runtime[Model, Msg]) SetOffset(n int) { rt.reconciler.SetOffset(n) }

// Dispatch implements Actions. Messages sent while an update or effect is
// running are queued and applied in order once it returns.
func (rt *Runtime[Model, Msg]) Dispatch(msg Msg, immediate bool) {
	rt.shouldFlush = rt.shouldFlush || immediate
	if rt.shouldQueue {
		rt.queue = append(rt.queue, msg)
		return
	}
	model, effects := rt.app.Update(rt.model, msg)
	rt.metrics.recordMessage()
	rt.model = model
	rt.tick(effects)
}

// Emit implements Actions.
func (rt *Runtime[Model, Msg]) Emit(name string, data map[string]any) {
	rt.root.DispatchEvent(&surface.Event{
		Type:    name,
		Bubbles: true,
		Detail:  data,
	})
}

// HandleEvent routes an event that fired at path on a remote surface
// through the current handlers, as if it had fired on the local node there.
func (rt *Runtime[Model, Msg]) HandleEvent(path, name string, payload any, immediate bool) {
	rt.handleEvent(payload, path, name, immediate)
}

func (rt *Runtime[Model, Msg]) handleEvent(payload any, path, name string, immediate bool) {
	events, msg, ok, err := rt.events.Handle(path, name, payload)
	rt.events = events
	switch {
	case err != nil:
		rt.logger.Debug("event decode failed",
			"code", errors.ErrEventDecode.Code,
			"path", path,
			"event", name,
			"error", err,
		)
		rt.metrics.recordDrop(DropDecode)
		return
	case !ok:
		rt.metrics.recordDrop(DropUnhandled)
		return
	}

	m, ok := msg.(Msg)
	if !ok {
		rt.logger.Debug("event message has wrong type",
			"code", errors.ErrMessageType.Code,
			"path", path,
			"event", name,
		)
		rt.metrics.recordDrop(DropType)
		return
	}
	rt.metrics.recordDispatch(name)
	rt.Dispatch(m, immediate)
}

// tick runs effects, then every queued message with the effects it
// produces, and finally renders or schedules a render.
func (rt *Runtime[Model, Msg]) tick(effects Effect[Msg]) {
	rt.shouldQueue = true
	for {
		for _, fn := range effects.Synchronous {
			fn(rt)
		}
		rt.beforePaint = append(rt.beforePaint, effects.BeforePaint...)
		rt.afterPaint = append(rt.afterPaint, effects.AfterPaint...)

		if len(rt.queue) == 0 {
			break
		}
		msg := rt.queue[0]
		rt.queue = rt.queue[1:]
		rt.model, effects = rt.app.Update(rt.model, msg)
		rt.metrics.recordMessage()
	}
	rt.shouldQueue = false

	if rt.shouldFlush {
		if rt.cancelFrame != nil {
			rt.cancelFrame()
			rt.cancelFrame = nil
		}
		rt.render()
	} else if rt.cancelFrame == nil {
		rt.cancelFrame = rt.sched.RequestFrame(rt.render)
	}
}

func (rt *Runtime[Model, Msg]) render() {
	rt.shouldFlush = false
	rt.cancelFrame = nil

	_, span := rt.tracer.Start(context.Background(), "plop.render",
		trace.WithAttributes(attribute.String("plop.runtime_id", rt.id)),
	)
	defer span.End()
	start := time.Now()

	next := rt.app.View(rt.model)
	patch, events := vdom.Diff(rt.events, rt.tree, next)
	rt.events = events
	rt.tree = next
	rt.reconciler.Push(patch)

	elapsed := time.Since(start)
	counts := patch.CountChanges()
	rt.metrics.recordRender(elapsed, counts)
	total := 0
	attrs := make([]attribute.KeyValue, 0, len(counts)+1)
	for op, n := range counts {
		total += n
		attrs = append(attrs, attribute.Int("plop.changes."+op.String(), n))
	}
	attrs = append(attrs, attribute.Int("plop.changes", total))
	span.SetAttributes(attrs...)
	rt.logger.Debug("rendered", "changes", total, "duration", elapsed)
	if rt.onRender != nil {
		rt.onRender(patch)
	}

	if len(rt.beforePaint) > 0 {
		effects := Effect[Msg]{Synchronous: rt.beforePaint}
		rt.beforePaint = nil
		rt.sched.QueueMicrotask(func() {
			rt.shouldFlush = true
			rt.tick(effects)
		})
	}
	if len(rt.afterPaint) > 0 {
		effects := Effect[Msg]{Synchronous: rt.afterPaint}
		rt.afterPaint = nil
		rt.sched.RequestFrame(func() {
			rt.shouldFlush = true
			rt.tick(effects)
		})
	}
}
