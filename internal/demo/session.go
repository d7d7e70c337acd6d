package demo

import (
	"github.com/vango-dev/plop/internal/errors"
	"github.com/vango-dev/plop/pkg/app"
	"github.com/vango-dev/plop/pkg/loop"
	"github.com/vango-dev/plop/pkg/render"
	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

// MountID is the id of the element the demo mounts on.
const MountID = "app"

// Session is a running demo on an in-memory document. Its methods must be
// called from the scheduler's thread.
type Session struct {
	doc *surface.MemoryDocument
	rt  *app.Runtime[Model, Msg]
}

// Config describes the document a session is mounted on.
type Config struct {
	// Items is the length of the list.
	Items int

	// Selector must match the mount element, "#app".
	Selector string

	// Offset is the number of header elements placed in the mount before
	// the list. The runtime leaves them alone.
	Offset int

	// Order restores a saved list. Items is ignored when it is set.
	Order []string
}

func (c Config) withDefaults() Config {
	if c.Items <= 0 {
		c.Items = DefaultItems
	}
	if c.Selector == "" {
		c.Selector = "#" + MountID
	}
	return c
}

// Start mounts the demo on a fresh document.
func Start(sched loop.Scheduler, cfg Config, opts ...app.Option) (*Session, error) {
	cfg = cfg.withDefaults()
	doc := surface.NewDocument()
	mount := doc.CreateElement("", "div")
	mount.SetAttribute("id", MountID)
	doc.Body().InsertBefore(mount, nil)
	for i := 0; i < cfg.Offset; i++ {
		header := doc.CreateElement("", "header")
		header.InsertBefore(doc.CreateText("Lift and plop"), nil)
		mount.InsertBefore(header, nil)
	}

	opts = append([]app.Option{app.WithScheduler(sched), app.WithOffset(cfg.Offset)}, opts...)
	a := App(cfg.Items)
	if len(cfg.Order) > 0 {
		a = AppFrom(cfg.Order)
	}
	rt, err := app.Start(a, doc, cfg.Selector, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{doc: doc, rt: rt}, nil
}

// Apply fires the step's event on its target item.
func (s *Session) Apply(step Step) error {
	target := s.doc.QuerySelector("[" + DataID + "=" + step.Target + "]")
	if target == nil {
		return errors.New("E101").
			WithDetailf("No item has id %q.", step.Target)
	}
	target.DispatchEvent(&surface.Event{Type: string(step.Action), Bubbles: true})
	return nil
}

// Model returns the current model.
func (s *Session) Model() Model { return s.rt.Model() }

// HTML renders the mounted list.
func (s *Session) HTML() string { return render.SurfaceString(s.rt.Root()) }

// View renders the current virtual tree.
func (s *Session) View() *vdom.VNode { return s.rt.Tree() }

// ID returns the runtime id.
func (s *Session) ID() string { return s.rt.ID() }

// HandleEvent routes an event from a remote surface by path.
func (s *Session) HandleEvent(path, name string, payload map[string]any, immediate bool) {
	s.rt.HandleEvent(path, name, payload, immediate)
}
