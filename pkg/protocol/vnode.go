package protocol

import (
	"fmt"
	"time"

	"github.com/vango-dev/plop/pkg/vdom"
)

const nilNode = 0xFF

// Element flags.
const (
	flagVoid        = 0x01
	flagSelfClosing = 0x02
)

// Event binding flags.
const (
	flagPreventDefault  = 0x01
	flagStopPropagation = 0x02
	flagImmediate       = 0x04
)

// EncodeVNode appends n and its subtree.
//
// Wire format:
//
//	[Kind: 1 byte | 0xFF for nil][Key: string]
//	Text:     [Text: string]
//	Element:  [Flags: 1 byte][Namespace][Tag][Attrs][Children]
//	Fragment: [Children]
//	Raw:      [Namespace][Tag][Attrs][InnerHTML: string]
//
// Event handlers and mappers have no wire form; decoded event bindings
// describe the listener only.
func EncodeVNode(e *Encoder, n *vdom.VNode) error {
	if n == nil {
		e.WriteByte(nilNode)
		return nil
	}
	e.WriteByte(byte(n.Kind))
	e.WriteString(n.Key)

	switch n.Kind {
	case vdom.KindText:
		e.WriteString(n.Text)
		return nil
	case vdom.KindElement:
		var flags byte
		if n.Void {
			flags |= flagVoid
		}
		if n.SelfClosing {
			flags |= flagSelfClosing
		}
		e.WriteByte(flags)
		e.WriteString(n.Namespace)
		e.WriteString(n.Tag)
		if err := EncodeAttributes(e, n.Attrs); err != nil {
			return err
		}
		return EncodeVNodes(e, n.Children)
	case vdom.KindFragment:
		return EncodeVNodes(e, n.Children)
	case vdom.KindRaw:
		e.WriteString(n.Namespace)
		e.WriteString(n.Tag)
		if err := EncodeAttributes(e, n.Attrs); err != nil {
			return err
		}
		e.WriteString(n.InnerHTML)
		return nil
	default:
		return fmt.Errorf("%w: node kind %d", ErrUnsupportedValue, n.Kind)
	}
}

// EncodeVNodes appends a count followed by each node.
func EncodeVNodes(e *Encoder, nodes []*vdom.VNode) error {
	e.WriteUvarint(uint64(len(nodes)))
	for _, n := range nodes {
		if err := EncodeVNode(e, n); err != nil {
			return err
		}
	}
	return nil
}

// EncodeAttributes appends a count followed by each attribute.
func EncodeAttributes(e *Encoder, attrs []vdom.Attribute) error {
	e.WriteUvarint(uint64(len(attrs)))
	for _, a := range attrs {
		e.WriteByte(byte(a.Kind))
		e.WriteString(a.Name)
		switch a.Kind {
		case vdom.AttrAttribute:
			e.WriteString(a.Value)
		case vdom.AttrProperty:
			if err := EncodeValue(e, a.Prop); err != nil {
				return fmt.Errorf("property %s: %w", a.Name, err)
			}
		case vdom.AttrEvent:
			var flags byte
			if a.PreventDefault {
				flags |= flagPreventDefault
			}
			if a.StopPropagation {
				flags |= flagStopPropagation
			}
			if a.Immediate {
				flags |= flagImmediate
			}
			e.WriteByte(flags)
			e.WriteStrings(a.Include)
			e.WriteByte(byte(a.Limit.Kind))
			e.WriteSvarint(int64(a.Limit.Delay))
		}
	}
	return nil
}

// DecodeVNode reads a node written by EncodeVNode. Keyed indexes and
// fragment slot counts are rebuilt from the children.
func DecodeVNode(d *Decoder) (*vdom.VNode, error) {
	return decodeVNode(d, newDepthContext(MaxVNodeDepth))
}

func decodeVNode(d *Decoder, dc *depthContext) (*vdom.VNode, error) {
	if err := dc.enter(); err != nil {
		return nil, err
	}
	defer dc.leave()

	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind == nilNode {
		return nil, nil
	}
	n := &vdom.VNode{Kind: vdom.VKind(kind)}
	if n.Key, err = d.ReadString(); err != nil {
		return nil, err
	}

	switch n.Kind {
	case vdom.KindText:
		n.Text, err = d.ReadString()
		return n, err

	case vdom.KindElement:
		flags, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		n.Void = flags&flagVoid != 0
		n.SelfClosing = flags&flagSelfClosing != 0
		if n.Namespace, err = d.ReadString(); err != nil {
			return nil, err
		}
		if n.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}
		if n.Attrs, err = DecodeAttributes(d); err != nil {
			return nil, err
		}
		if n.Children, err = decodeVNodes(d, dc); err != nil {
			return nil, err
		}
		n.KeyedChildren = keyedIndex(n.Children)
		return n, nil

	case vdom.KindFragment:
		if n.Children, err = decodeVNodes(d, dc); err != nil {
			return nil, err
		}
		n.KeyedChildren = keyedIndex(n.Children)
		for _, c := range n.Children {
			n.ChildrenCount += vdom.Advance(c)
		}
		return n, nil

	case vdom.KindRaw:
		if n.Namespace, err = d.ReadString(); err != nil {
			return nil, err
		}
		if n.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}
		if n.Attrs, err = DecodeAttributes(d); err != nil {
			return nil, err
		}
		n.InnerHTML, err = d.ReadString()
		return n, err

	default:
		return nil, fmt.Errorf("%w: node kind 0x%02x", ErrUnknownTag, kind)
	}
}

// DecodeVNodes reads a value written by EncodeVNodes.
func DecodeVNodes(d *Decoder) ([]*vdom.VNode, error) {
	return decodeVNodes(d, newDepthContext(MaxVNodeDepth))
}

func decodeVNodes(d *Decoder, dc *depthContext) ([]*vdom.VNode, error) {
	count, err := d.ReadCollectionCount()
	if err != nil || count == 0 {
		return nil, err
	}
	nodes := make([]*vdom.VNode, 0, count)
	for i := 0; i < count; i++ {
		n, err := decodeVNode(d, dc)
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// DecodeAttributes reads a value written by EncodeAttributes.
func DecodeAttributes(d *Decoder) ([]vdom.Attribute, error) {
	count, err := d.ReadCollectionCount()
	if err != nil || count == 0 {
		return nil, err
	}
	attrs := make([]vdom.Attribute, count)
	for i := range attrs {
		a := &attrs[i]
		kind, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		a.Kind = vdom.AttrKind(kind)
		if a.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		switch a.Kind {
		case vdom.AttrAttribute:
			a.Value, err = d.ReadString()
		case vdom.AttrProperty:
			a.Prop, err = DecodeValue(d)
		case vdom.AttrEvent:
			err = decodeEventBinding(d, a)
		default:
			err = fmt.Errorf("%w: attribute kind 0x%02x", ErrUnknownTag, kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return attrs, nil
}

func decodeEventBinding(d *Decoder, a *vdom.Attribute) error {
	flags, err := d.ReadByte()
	if err != nil {
		return err
	}
	a.PreventDefault = flags&flagPreventDefault != 0
	a.StopPropagation = flags&flagStopPropagation != 0
	a.Immediate = flags&flagImmediate != 0
	if a.Include, err = d.ReadStrings(); err != nil {
		return err
	}
	limit, err := d.ReadByte()
	if err != nil {
		return err
	}
	if vdom.LimitKind(limit) > vdom.LimitThrottle {
		return fmt.Errorf("%w: limit kind 0x%02x", ErrUnknownTag, limit)
	}
	delay, err := d.ReadSvarint()
	if err != nil {
		return err
	}
	a.Limit = vdom.Limit{Kind: vdom.LimitKind(limit), Delay: time.Duration(delay)}
	return nil
}

func keyedIndex(children []*vdom.VNode) map[string]*vdom.VNode {
	var keyed map[string]*vdom.VNode
	for _, c := range children {
		if c.Key == "" {
			continue
		}
		if keyed == nil {
			keyed = make(map[string]*vdom.VNode)
		}
		keyed[c.Key] = c
	}
	return keyed
}
