// Package app runs a model-update-view application on a surface.
//
// A Runtime owns the model and the last rendered tree. Messages come from
// decoded surface events and from effects; each one goes through Update,
// and the resulting model is rendered on the next paint frame:
//
//	counter := app.Simple(
//	    func() int { return 0 },
//	    func(n int, msg string) int { return n + 1 },
//	    func(n int) *vdom.VNode {
//	        return vdom.Button(vdom.OnClick("inc"), vdom.Text(strconv.Itoa(n)))
//	    },
//	)
//	rt, err := app.Start(counter, doc, "#app", app.WithScheduler(l))
//
// Messages dispatched while an update or effect is running are queued and
// applied in order before rendering. Immediate events (input, change and
// focus changes) and effects run around a paint render inline instead of
// waiting for a frame, so controlled inputs never show a stale value.
//
// # Effects
//
// Synchronous effects run right after the update that returned them.
// BeforePaint effects run in a microtask after the next render; AfterPaint
// effects run on the frame after it. Both render inline once they finish.
//
// # Observability
//
// WithMetrics reports renders, patch sizes and event outcomes to
// Prometheus. Every render is traced as a "plop.render" span through the
// global OpenTelemetry tracer provider unless WithTracer is given.
package app
