// Package vdom provides the virtual node model, the event registry and the
// diffing engine for plop.
//
// A virtual tree is an immutable description of UI. Each render produces a
// fresh tree which is compared against the previous one by Diff. The result
// is a Patch: a recursive edit tree that a reconciler applies to a live
// surface, plus an updated Registry mapping event paths to decoders.
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text,
// fragments and raw markup. Attribute is a tagged union of plain attributes,
// properties and event bindings. Patch and Change describe mutations.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	    OnClick(Save{}),
//	)
//
// Children passed as KeyedChild values are indexed by key, which lets the
// diff detect reorders and emit Move changes instead of recreating nodes.
//
// # Slots and paths
//
// Fragments do not exist on the live surface. A fragment occupies one slot
// for an empty head text node followed by its flattened children, so all
// index arithmetic uses Advance rather than raw child counts. Event handlers
// are addressed by Path: a chain of key or index segments from the mount
// root, rendered to a string with distinct separators so that prefix matching
// is unambiguous.
//
// # Diffing
//
// Diff walks each sibling list iteratively, tracking the set of keys already
// moved, a moved offset correcting later indices, and the running node index.
// Changes inside a Patch are stored in application order.
package vdom
