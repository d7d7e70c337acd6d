package vdom

import "time"

// Decoder turns an event payload into an application message. The payload
// is either a live event exposing Fields or, for remote events, a plain
// map[string]any. Returning an error drops the event.
type Decoder func(payload any) (any, error)

var immediateEvents = map[string]bool{
	"input":    true,
	"change":   true,
	"focus":    true,
	"focusin":  true,
	"focusout": true,
	"blur":     true,
	"select":   true,
}

// IsImmediateEvent reports whether messages from the named event should be
// rendered without waiting for the next frame.
func IsImmediateEvent(name string) bool {
	return immediateEvents[name]
}

// On binds an event handler. Form and focus events are immediate.
func On(name string, handler Decoder) Attribute {
	return Attribute{
		Kind:      AttrEvent,
		Name:      name,
		Handler:   handler,
		Immediate: IsImmediateEvent(name),
	}
}

// PreventDefault marks an event binding to cancel the default action.
func PreventDefault(a Attribute) Attribute {
	a.PreventDefault = true
	return a
}

// StopPropagation marks an event binding to stop bubbling.
func StopPropagation(a Attribute) Attribute {
	a.StopPropagation = true
	return a
}

// Immediate forces or clears immediate rendering for an event binding.
func Immediate(a Attribute, on bool) Attribute {
	a.Immediate = on
	return a
}

// Debounce delays dispatch until the event has been quiet for d. Only the
// last payload is dispatched.
func Debounce(a Attribute, d time.Duration) Attribute {
	a.Limit = Limit{Kind: LimitDebounce, Delay: d}
	return a
}

// Throttle dispatches at most once per d and drops the rest.
func Throttle(a Attribute, d time.Duration) Attribute {
	a.Limit = Limit{Kind: LimitThrottle, Delay: d}
	return a
}

// Include adds dotted property paths to copy into remote event payloads.
func Include(a Attribute, fields ...string) Attribute {
	inc := make([]string, 0, len(a.Include)+len(fields))
	inc = append(inc, a.Include...)
	a.Include = append(inc, fields...)
	return a
}

// Mouse events

// OnClick dispatches msg on click.
func OnClick(msg any) Attribute { return On("click", Succeed(msg)) }

// OnDblClick dispatches msg on double click.
func OnDblClick(msg any) Attribute { return On("dblclick", Succeed(msg)) }

// OnMouseDown dispatches msg on mousedown.
func OnMouseDown(msg any) Attribute { return On("mousedown", Succeed(msg)) }

// OnMouseUp dispatches msg on mouseup.
func OnMouseUp(msg any) Attribute { return On("mouseup", Succeed(msg)) }

// OnMouseEnter dispatches msg on mouseenter.
func OnMouseEnter(msg any) Attribute { return On("mouseenter", Succeed(msg)) }

// OnMouseLeave dispatches msg on mouseleave.
func OnMouseLeave(msg any) Attribute { return On("mouseleave", Succeed(msg)) }

// Drag events

func OnDragStart(msg any) Attribute { return On("dragstart", Succeed(msg)) }
func OnDragEnd(msg any) Attribute   { return On("dragend", Succeed(msg)) }
func OnDragEnter(msg any) Attribute { return On("dragenter", Succeed(msg)) }
func OnDragLeave(msg any) Attribute { return On("dragleave", Succeed(msg)) }

// OnDragOver dispatches msg on dragover. The default action is prevented so
// the element accepts drops.
func OnDragOver(msg any) Attribute { return PreventDefault(On("dragover", Succeed(msg))) }

// OnDrop dispatches msg on drop.
func OnDrop(msg any) Attribute { return PreventDefault(On("drop", Succeed(msg))) }

// Form events

// OnInput decodes target.value on input.
func OnInput(fn func(value string) any) Attribute {
	return On("input", DecodeString("target.value", fn))
}

// OnChange decodes target.value on change.
func OnChange(fn func(value string) any) Attribute {
	return On("change", DecodeString("target.value", fn))
}

// OnCheck decodes target.checked on change.
func OnCheck(fn func(checked bool) any) Attribute {
	return Include(On("change", DecodeBool("target.checked", fn)), "target.checked")
}

// OnSubmit decodes the submitted form data on submit. The default action is
// always prevented.
func OnSubmit(fn func(form [][2]string) any) Attribute {
	return PreventDefault(On("submit", DecodeFormData(fn)))
}

// Focus events

func OnFocus(msg any) Attribute { return On("focus", Succeed(msg)) }
func OnBlur(msg any) Attribute  { return On("blur", Succeed(msg)) }

// Keyboard events

// OnKeyDown decodes the key name on keydown. Remote payloads include it.
func OnKeyDown(fn func(key string) any) Attribute {
	return Include(On("keydown", DecodeString("key", fn)), "key")
}

// KeyEvent is a decoded keyboard event.
type KeyEvent struct {
	Key      string `json:"key"`
	Code     string `json:"code"`
	Location int    `json:"location"`
	Repeat   bool   `json:"repeat"`
	AltKey   bool   `json:"altKey"`
	CtrlKey  bool   `json:"ctrlKey"`
	MetaKey  bool   `json:"metaKey"`
	ShiftKey bool   `json:"shiftKey"`
}

var keyEventFields = []string{"key", "code", "location", "repeat", "altKey", "ctrlKey", "metaKey", "shiftKey"}

// OnKey decodes the full keyboard event on name, usually keydown or keyup.
// Remote payloads include every KeyEvent field.
func OnKey(name string, fn func(KeyEvent) any) Attribute {
	return Include(On(name, DecodeInto(fn)), keyEventFields...)
}

// OnKeyUp decodes the key name on keyup.
func OnKeyUp(fn func(key string) any) Attribute {
	return Include(On("keyup", DecodeString("key", fn)), "key")
}
