package protocol

import (
	"fmt"

	"github.com/vango-dev/plop/pkg/vdom"
)

// EncodePatch appends a patch tree.
//
// Wire format:
//
//	[Index: varint][Removed: varint][Changes: count + change...][Children: count + patch...]
//
// Each change starts with its vdom.ChangeOp byte followed by the fields
// that op uses, in the order documented on vdom.Change.
func EncodePatch(e *Encoder, p *vdom.Patch) error {
	if p == nil {
		p = &vdom.Patch{}
	}
	e.WriteInt(p.Index)
	e.WriteInt(p.Removed)
	e.WriteUvarint(uint64(len(p.Changes)))
	for _, c := range p.Changes {
		if err := encodeChange(e, c); err != nil {
			return err
		}
	}
	e.WriteUvarint(uint64(len(p.Children)))
	for _, child := range p.Children {
		if err := EncodePatch(e, child); err != nil {
			return err
		}
	}
	return nil
}

func encodeChange(e *Encoder, c vdom.Change) error {
	e.WriteByte(byte(c.Op))
	switch c.Op {
	case vdom.OpReplaceText, vdom.OpReplaceInnerHTML:
		e.WriteString(c.Content)
	case vdom.OpUpdate:
		if err := EncodeAttributes(e, c.Added); err != nil {
			return err
		}
		return EncodeAttributes(e, c.Removed)
	case vdom.OpMove:
		e.WriteString(c.Key)
		e.WriteInt(c.Before)
		e.WriteInt(c.Count)
	case vdom.OpRemoveKey:
		e.WriteString(c.Key)
		e.WriteInt(c.Count)
	case vdom.OpReplace:
		e.WriteInt(c.From)
		e.WriteInt(c.Count)
		return EncodeVNode(e, c.Node)
	case vdom.OpInsert:
		if err := EncodeVNodes(e, c.Nodes); err != nil {
			return err
		}
		e.WriteInt(c.Before)
	case vdom.OpRemove:
		e.WriteInt(c.From)
		e.WriteInt(c.Count)
	default:
		return fmt.Errorf("%w: change op %d", ErrUnsupportedValue, c.Op)
	}
	return nil
}

// DecodePatch reads a patch tree written by EncodePatch.
func DecodePatch(d *Decoder) (*vdom.Patch, error) {
	return decodePatch(d, newDepthContext(MaxPatchDepth))
}

func decodePatch(d *Decoder, dc *depthContext) (*vdom.Patch, error) {
	if err := dc.enter(); err != nil {
		return nil, err
	}
	defer dc.leave()

	p := &vdom.Patch{}
	var err error
	if p.Index, err = d.ReadInt(); err != nil {
		return nil, err
	}
	if p.Removed, err = d.ReadInt(); err != nil {
		return nil, err
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		p.Changes = make([]vdom.Change, count)
		for i := range p.Changes {
			if p.Changes[i], err = decodeChange(d); err != nil {
				return nil, err
			}
		}
	}

	if count, err = d.ReadCollectionCount(); err != nil {
		return nil, err
	}
	if count > 0 {
		p.Children = make([]*vdom.Patch, count)
		for i := range p.Children {
			if p.Children[i], err = decodePatch(d, dc); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func decodeChange(d *Decoder) (vdom.Change, error) {
	op, err := d.ReadByte()
	if err != nil {
		return vdom.Change{}, err
	}
	c := vdom.Change{Op: vdom.ChangeOp(op)}

	switch c.Op {
	case vdom.OpReplaceText, vdom.OpReplaceInnerHTML:
		c.Content, err = d.ReadString()
	case vdom.OpUpdate:
		if c.Added, err = DecodeAttributes(d); err == nil {
			c.Removed, err = DecodeAttributes(d)
		}
	case vdom.OpMove:
		if c.Key, err = d.ReadString(); err == nil {
			if c.Before, err = d.ReadInt(); err == nil {
				c.Count, err = d.ReadInt()
			}
		}
	case vdom.OpRemoveKey:
		if c.Key, err = d.ReadString(); err == nil {
			c.Count, err = d.ReadInt()
		}
	case vdom.OpReplace:
		if c.From, err = d.ReadInt(); err == nil {
			if c.Count, err = d.ReadInt(); err == nil {
				c.Node, err = DecodeVNode(d)
			}
		}
	case vdom.OpInsert:
		if c.Nodes, err = DecodeVNodes(d); err == nil {
			c.Before, err = d.ReadInt()
		}
	case vdom.OpRemove:
		if c.From, err = d.ReadInt(); err == nil {
			c.Count, err = d.ReadInt()
		}
	default:
		err = fmt.Errorf("%w: change op 0x%02x", ErrUnknownTag, op)
	}
	return c, err
}
