package demo

import (
	"strconv"
	"strings"

	"github.com/vango-dev/plop/pkg/app"
	"github.com/vango-dev/plop/pkg/seq"
	"github.com/vango-dev/plop/pkg/vdom"
)

// DefaultItems is the number of items in a new list.
const DefaultItems = 4

// PlaceholderID keys the slot where the dragged item would land.
const PlaceholderID = "placeholder"

// DataID is the attribute every item carries its id in.
const DataID = "data-id"

// Item is one entry of the list.
type Item struct {
	ID          string
	Content     string
	Placeholder bool
}

// DragState tracks an item being dragged.
type DragState struct {
	ItemID           string
	ItemIndex        int
	PlaceholderIndex int
}

// Model is the demo state.
type Model struct {
	Items seq.Seq[Item]
	Drag  *DragState
}

// IDs returns the item ids in list order.
func (m Model) IDs() []string {
	return seq.Fold(m.Items, []string(nil), func(ids []string, it Item) []string {
		return append(ids, it.ID)
	})
}

// Msg is a demo message.
type Msg interface{ isMsg() }

// DragStart picks up the item with ID.
type DragStart struct{ ID string }

// DragOver moves the placeholder to the item with ID.
type DragOver struct{ ID string }

// DropEnd puts the dragged item down.
type DropEnd struct{ ID string }

// KeyPress is a key pressed while the item with ID has focus. Alt with
// ArrowUp or ArrowDown moves the item one place.
type KeyPress struct {
	ID  string
	Key vdom.KeyEvent
}

func (DragStart) isMsg() {}
func (DragOver) isMsg()  {}
func (DropEnd) isMsg()   {}
func (KeyPress) isMsg()  {}

// Init returns a list of n numbered items.
func Init(n int) Model {
	return Model{
		Items: seq.Initialise(n, func(i int) Item {
			id := strconv.Itoa(i)
			return Item{ID: "number-" + id, Content: "Number " + id}
		}),
	}
}

// Restore returns the list holding ids in order. Repeated ids are dropped.
func Restore(ids []string) Model {
	seen := make(map[string]bool, len(ids))
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		if seen[id] || id == "" || id == PlaceholderID {
			continue
		}
		seen[id] = true
		items = append(items, Item{ID: id, Content: contentOf(id)})
	}
	return Model{Items: seq.Of(items...)}
}

func contentOf(id string) string {
	if n, ok := strings.CutPrefix(id, "number-"); ok {
		return "Number " + n
	}
	return id
}

func hasID(id string) func(Item) bool {
	return func(it Item) bool { return it.ID == id }
}

// Update applies msg to m.
func Update(m Model, msg Msg) Model {
	switch msg := msg.(type) {
	case DragStart:
		var drag *DragState
		if i := m.Items.FindIndex(hasID(msg.ID)); i >= 0 {
			drag = &DragState{ItemID: msg.ID, ItemIndex: i, PlaceholderIndex: i}
		}
		items := seq.Map(m.Items, func(it Item) Item {
			it.Placeholder = it.ID == msg.ID
			return it
		})
		return Model{Items: items, Drag: drag}

	case DropEnd:
		items := seq.Map(m.Items, func(it Item) Item {
			it.Placeholder = false
			return it
		})
		return Model{Items: items}

	case DragOver:
		if m.Drag == nil {
			return m
		}
		over := m.Items.FindIndex(hasID(msg.ID))
		if over < 0 {
			return m
		}
		drag := *m.Drag
		items := m.Items
		if dragged, ok := m.Items.Find(hasID(drag.ItemID)); ok {
			items = items.TryDelete(drag.PlaceholderIndex).InsertClamped(over, dragged)
		}
		drag.PlaceholderIndex = over
		return Model{Items: items, Drag: &drag}

	case KeyPress:
		return moveByKey(m, msg)
	}
	return m
}

func moveByKey(m Model, msg KeyPress) Model {
	if m.Drag != nil || !msg.Key.AltKey {
		return m
	}
	var delta int
	switch msg.Key.Key {
	case "ArrowUp":
		delta = -1
	case "ArrowDown":
		delta = 1
	default:
		return m
	}
	from := m.Items.FindIndex(hasID(msg.ID))
	to := from + delta
	if from < 0 || to < 0 || to >= m.Items.Len() {
		return m
	}
	item, _ := m.Items.Get(from)
	return Model{Items: m.Items.TryDelete(from).InsertClamped(to, item)}
}

// View renders the list. The item being dragged is keyed as the
// placeholder so it is rebuilt rather than moved.
func View(m Model) *vdom.VNode {
	children := make([]vdom.KeyedChild, 0, m.Items.Len())
	for _, it := range m.Items.All() {
		id := it.ID
		if it.Placeholder {
			id = PlaceholderID
		}
		children = append(children, vdom.Keyed(id, droppable(id, it.Placeholder, it.Content)))
	}
	return vdom.KeyedElement("div", []vdom.Attribute{vdom.Class("list")}, children)
}

func droppable(id string, placeholder bool, content string) *vdom.VNode {
	onDrop := vdom.OnDrop(DropEnd{ID: id})
	onDragOver := vdom.OnDragOver(DragOver{ID: id})
	onDragEnd := vdom.OnDragEnd(DropEnd{})

	if placeholder {
		return vdom.Div(
			vdom.Class("draggable placeholder"),
			vdom.Attr(DataID, id),
			onDrop, onDragOver, onDragEnd,
			content,
		)
	}
	return vdom.Div(
		vdom.Class("draggable"),
		vdom.Attr(DataID, id),
		vdom.Draggable(true),
		vdom.TabIndex(0),
		vdom.OnDragStart(DragStart{ID: id}),
		vdom.OnKey("keydown", func(e vdom.KeyEvent) any { return KeyPress{ID: id, Key: e} }),
		onDragOver, onDrop, onDragEnd,
		content,
	)
}

// App returns the lift-and-plop application over n items.
func App(n int) app.App[Model, Msg] {
	return app.Simple(func() Model { return Init(n) }, Update, View)
}

// AppFrom returns the application starting from the list ids.
func AppFrom(ids []string) app.App[Model, Msg] {
	return app.Simple(func() Model { return Restore(ids) }, Update, View)
}
