package reconcile

import "github.com/vango-dev/plop/pkg/surface"

// attributeHook keeps live state in step with attributes whose markup form
// only sets a default.
type attributeHook struct {
	added   func(r *Reconciler, node surface.Node, value string)
	removed func(r *Reconciler, node surface.Node)
}

var hooks = map[string]attributeHook{
	"checked":  syncedBool("checked"),
	"selected": syncedBool("selected"),
	"value": {
		added: func(_ *Reconciler, node surface.Node, value string) {
			node.SetProperty("value", value)
		},
	},
	"autofocus": {
		added: func(r *Reconciler, node surface.Node, _ string) {
			r.sched.QueueMicrotask(node.Focus)
		},
	},
	"autoplay": {
		added: func(_ *Reconciler, node surface.Node, _ string) {
			node.SetProperty("paused", false)
		},
	},
}

func syncedBool(name string) attributeHook {
	return attributeHook{
		added: func(_ *Reconciler, node surface.Node, _ string) {
			node.SetProperty(name, true)
		},
		removed: func(_ *Reconciler, node surface.Node) {
			node.SetProperty(name, false)
		},
	}
}
