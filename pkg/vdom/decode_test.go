package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fieldsOf map[string]any

func (f fieldsOf) Fields() map[string]any { return f }

func TestDecodeInto(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    KeyEvent
		wantErr bool
	}{
		{
			name:    "typed",
			payload: map[string]any{"key": "ArrowUp", "altKey": true, "location": 0},
			want:    KeyEvent{Key: "ArrowUp", AltKey: true},
		},
		{
			name:    "remote strings",
			payload: map[string]any{"key": "a", "location": "2", "repeat": "true", "shiftKey": "1"},
			want:    KeyEvent{Key: "a", Location: 2, Repeat: true, ShiftKey: true},
		},
		{
			name:    "codec integers",
			payload: map[string]any{"key": "b", "location": int64(1)},
			want:    KeyEvent{Key: "b", Location: 1},
		},
		{
			name:    "live event",
			payload: fieldsOf{"key": "Enter", "ctrlKey": true, "target": map[string]any{"tagName": "input"}},
			want:    KeyEvent{Key: "Enter", CtrlKey: true},
		},
		{
			name:    "bad number",
			payload: map[string]any{"location": "left"},
			wantErr: true,
		},
		{
			name:    "no fields",
			payload: "Enter",
			wantErr: true,
		},
	}
	decode := DecodeInto(func(e KeyEvent) any { return e })
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Errorf("decode() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOnKey(t *testing.T) {
	a := OnKey("keydown", func(e KeyEvent) any { return e.Key })
	if a.Name != "keydown" || a.Kind != AttrEvent {
		t.Fatalf("OnKey() = %s %v", a.Name, a.Kind)
	}
	if diff := cmp.Diff(keyEventFields, a.Include); diff != "" {
		t.Errorf("Include mismatch (-want +got):\n%s", diff)
	}

	_, reg := Diff(nil, None(), Div(a))
	_, msg, ok, err := reg.Handle("0", "keydown", map[string]any{"key": "Escape"})
	if !ok || err != nil || msg != "Escape" {
		t.Errorf("Handle = %v, %v, %v; want Escape", msg, ok, err)
	}
}
