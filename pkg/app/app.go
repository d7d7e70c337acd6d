package app

import (
	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

// App describes an application as a model, the messages that change it and
// a view of it.
type App[Model, Msg any] struct {
	// Init builds the first model and any startup effects.
	Init func() (Model, Effect[Msg])
	// Update applies one message.
	Update func(Model, Msg) (Model, Effect[Msg])
	// View renders the model. It must not retain the returned tree.
	View func(Model) *vdom.VNode
}

// Simple builds an App whose init and update produce no effects.
func Simple[Model, Msg any](init func() Model, update func(Model, Msg) Model, view func(Model) *vdom.VNode) App[Model, Msg] {
	return App[Model, Msg]{
		Init: func() (Model, Effect[Msg]) {
			return init(), None[Msg]()
		},
		Update: func(m Model, msg Msg) (Model, Effect[Msg]) {
			return update(m, msg), None[Msg]()
		},
		View: view,
	}
}

// Actions is what an effect may do to the runtime that runs it.
type Actions[Msg any] interface {
	// Dispatch sends msg to the update function. An immediate message
	// forces the next render to happen inline instead of on a frame.
	Dispatch(msg Msg, immediate bool)
	// Emit dispatches a bubbling custom event on the root.
	Emit(name string, data map[string]any)
	// Root is the node the runtime is mounted on.
	Root() surface.Node
}

// Effect holds side effects returned from Init and Update, grouped by when
// they run: Synchronous right after the update, BeforePaint in a microtask
// after the next render, AfterPaint on the frame after it.
type Effect[Msg any] struct {
	Synchronous []func(Actions[Msg])
	BeforePaint []func(Actions[Msg])
	AfterPaint  []func(Actions[Msg])
}

// None returns the empty effect.
func None[Msg any]() Effect[Msg] {
	return Effect[Msg]{}
}

// From wraps fn as a synchronous effect.
func From[Msg any](fn func(Actions[Msg])) Effect[Msg] {
	return Effect[Msg]{Synchronous: []func(Actions[Msg]){fn}}
}

// BeforePaint wraps fn to run after the next render, before the frame after it.
func BeforePaint[Msg any](fn func(Actions[Msg])) Effect[Msg] {
	return Effect[Msg]{BeforePaint: []func(Actions[Msg]){fn}}
}

// AfterPaint wraps fn to run on the frame following the next render.
func AfterPaint[Msg any](fn func(Actions[Msg])) Effect[Msg] {
	return Effect[Msg]{AfterPaint: []func(Actions[Msg]){fn}}
}

// Send is a synchronous effect dispatching msg.
func Send[Msg any](msg Msg) Effect[Msg] {
	return From(func(a Actions[Msg]) { a.Dispatch(msg, false) })
}

// Batch merges effects, keeping their order within each group.
func Batch[Msg any](effects ...Effect[Msg]) Effect[Msg] {
	var out Effect[Msg]
	for _, e := range effects {
		out.Synchronous = append(out.Synchronous, e.Synchronous...)
		out.BeforePaint = append(out.BeforePaint, e.BeforePaint...)
		out.AfterPaint = append(out.AfterPaint, e.AfterPaint...)
	}
	return out
}

// IsNone reports whether e does nothing.
func (e Effect[Msg]) IsNone() bool {
	return len(e.Synchronous) == 0 && len(e.BeforePaint) == 0 && len(e.AfterPaint) == 0
}
