// Package server exposes a running demo session over HTTP.
//
// The session runs on a real-time loop; handlers hand their work to the
// loop and wait for it. Steps and events are applied at once and rendered
// on the next frame, so a snapshot taken right after a step may still show
// the previous state.
package server
