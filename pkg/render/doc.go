// Package render produces HTML from virtual trees and from live surfaces.
//
// Rendering a virtual tree gives the markup the reconciler would build for
// it; rendering a surface gives the markup it actually built. Tests compare
// the two after applying patches.
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// # Pages
//
// RenderPage wraps a body in a full document. Keyed elements carry a
// data-plop-key attribute so a runtime started on the page can virtualise
// it and continue from the server-rendered state.
//
// # Escaping
//
// Text and attribute values are escaped. Raw nodes write their inner HTML
// verbatim and must only carry trusted content.
package render
