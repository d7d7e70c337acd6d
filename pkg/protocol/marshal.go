package protocol

import (
	"github.com/vango-dev/plop/internal/errors"
	"github.com/vango-dev/plop/pkg/vdom"
)

// MarshalPatch encodes a patch tree to bytes.
func MarshalPatch(p *vdom.Patch) ([]byte, error) {
	e := NewEncoder()
	if err := EncodePatch(e, p); err != nil {
		return nil, errors.New("E131").Wrap(err)
	}
	return e.Bytes(), nil
}

// UnmarshalPatch decodes bytes produced by MarshalPatch.
func UnmarshalPatch(data []byte) (*vdom.Patch, error) {
	d := NewDecoder(data)
	p, err := DecodePatch(d)
	if err != nil {
		return nil, errors.New("E130").Wrap(err)
	}
	if !d.EOF() {
		return nil, errors.New("E130").WithDetailf("%d trailing bytes after patch.", d.Remaining())
	}
	return p, nil
}

// MarshalEvent encodes a remote event to bytes.
func MarshalEvent(ev *Event) ([]byte, error) {
	e := NewEncoder()
	if err := EncodeEvent(e, ev); err != nil {
		return nil, errors.New("E131").Wrap(err)
	}
	return e.Bytes(), nil
}

// UnmarshalEvent decodes bytes produced by MarshalEvent.
func UnmarshalEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev, err := DecodeEvent(d)
	if err != nil {
		return nil, errors.New("E130").Wrap(err)
	}
	if !d.EOF() {
		return nil, errors.New("E130").WithDetailf("%d trailing bytes after event.", d.Remaining())
	}
	return ev, nil
}
