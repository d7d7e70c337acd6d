// Package vtest provides testing helpers for plop applications.
//
// A Harness starts an app on an in-memory document driven by a manual
// clock, so tests fire events, step paint frames and advance timers
// deterministically.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Start(t, counter)
//	    h.Click("button")
//	    h.Settle()
//	    h.ExpectHTML("<button>1</button>")
//	}
//
// Events fired through the harness run their microtasks before returning.
// Renders wait for Frame or Settle unless the event is immediate, and
// debounced handlers wait for Advance.
//
// # Render Assertions
//
// Assert on the rendered HTML of a view without running it:
//
//	vtest.ExpectContains(t, view(model), "Welcome")
//	vtest.ExpectAttribute(t, view(model), "class", "active")
package vtest
