package protocol

// Event is a remote event: a surface event addressed by the path of the
// node it fired on, with the payload fields selected by the reconciler.
type Event struct {
	Path      string
	Name      string
	Immediate bool
	Payload   map[string]any
}

// EncodeEvent appends ev.
//
// Wire format:
//
//	[Path: string][Name: string][Immediate: bool][Payload: map value]
func EncodeEvent(e *Encoder, ev *Event) error {
	e.WriteString(ev.Path)
	e.WriteString(ev.Name)
	e.WriteBool(ev.Immediate)
	return encodeMap(e, ev.Payload)
}

// DecodeEvent reads an event written by EncodeEvent.
func DecodeEvent(d *Decoder) (*Event, error) {
	ev := &Event{}
	var err error
	if ev.Path, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Immediate, err = d.ReadBool(); err != nil {
		return nil, err
	}
	dc := newDepthContext(MaxValueDepth)
	if err := dc.enter(); err != nil {
		return nil, err
	}
	if ev.Payload, err = decodeMap(d, dc); err != nil {
		return nil, err
	}
	return ev, nil
}
