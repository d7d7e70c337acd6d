package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/plop/pkg/vdom"
)

// DefaultMountID is the id of the element page bodies are rendered into.
const DefaultMountID = "app"

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is rendered inside the mount element.
	Body *vdom.VNode

	Title string
	Meta  []MetaTag

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	Scripts []ScriptTag

	// MountID defaults to DefaultMountID.
	MountID string

	// Lang defaults to "en".
	Lang string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name      string
	Content   string
	Property  string // OpenGraph
	HTTPEquiv string
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string
	Module bool
	Defer  bool
	Inline string
}

// RenderPage renders a complete HTML document. Keys are always emitted in
// the body so the page can be virtualised.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	ew := &errWriter{w: w}
	r.writeDocumentStart(ew, page)
	r.writeBody(ew, page)
	ew.WriteString("</body>\n</html>\n")
	return ew.err
}

func (r *Renderer) writeDocumentStart(w *errWriter, page PageData) {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	w.WriteString("<!DOCTYPE html>\n")
	w.WriteString(`<html lang="` + escapeAttr(lang) + `">` + "\n")
	w.WriteString("<head>\n")
	w.WriteString(`  <meta charset="utf-8">` + "\n")
	w.WriteString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if page.Title != "" {
		w.WriteString("  <title>" + escapeHTML(page.Title) + "</title>\n")
	}
	for _, m := range page.Meta {
		writeMeta(w, m)
	}
	for _, href := range page.StyleSheets {
		w.WriteString(`  <link rel="stylesheet" href="` + escapeAttr(href) + `">` + "\n")
	}
	w.WriteString("</head>\n")
}

func (r *Renderer) writeBody(w *errWriter, page PageData) {
	id := page.MountID
	if id == "" {
		id = DefaultMountID
	}
	w.WriteString("<body>\n")
	w.WriteString(`<div id="` + escapeAttr(id) + `">`)
	if w.err == nil {
		keyed := *r
		keyed.config.Keys = true
		keyed.renderNode(w, page.Body, 0)
	}
	w.WriteString("</div>\n")
	for _, s := range page.Scripts {
		writeScript(w, s)
	}
}

func writeMeta(w *errWriter, m MetaTag) {
	w.WriteString("  <meta")
	for _, a := range [][2]string{
		{"name", m.Name},
		{"property", m.Property},
		{"http-equiv", m.HTTPEquiv},
		{"content", m.Content},
	} {
		if a[1] != "" {
			w.WriteString(fmt.Sprintf(` %s="%s"`, a[0], escapeAttr(a[1])))
		}
	}
	w.WriteString(">\n")
}

func writeScript(w *errWriter, s ScriptTag) {
	w.WriteString("  <script")
	if s.Src != "" {
		w.WriteString(` src="` + escapeAttr(s.Src) + `"`)
	}
	if s.Module {
		w.WriteString(` type="module"`)
	}
	if s.Defer {
		w.WriteString(" defer")
	}
	w.WriteString(">" + s.Inline + "</script>\n")
}
