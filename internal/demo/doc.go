// Package demo is a reorderable list driven by drag-and-drop events.
//
// Picking an item up turns it into a placeholder; dragging over another
// item moves the placeholder there; dropping puts the item down in the
// placeholder's slot. Items are keyed, so items that change place are
// moved rather than rebuilt.
//
// The list runs headless on an in-memory document. Play replays a script
// of steps on a manual clock and reports the patches each step produced.
package demo
