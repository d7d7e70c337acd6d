package protocol

import (
	"errors"
	"fmt"
	"sort"
)

// ValueType tags a dynamically typed value: a property value or a field of
// a remote event payload.
type ValueType uint8

const (
	ValueNull   ValueType = 0x00
	ValueBool   ValueType = 0x01
	ValueInt    ValueType = 0x02
	ValueFloat  ValueType = 0x03
	ValueString ValueType = 0x04
	ValueList   ValueType = 0x05
	ValueMap    ValueType = 0x06
	ValuePairs  ValueType = 0x07 // [][2]string, as captured form data
)

// ErrUnsupportedValue is returned for values with no wire representation.
var ErrUnsupportedValue = errors.New("protocol: unsupported value type")

// EncodeValue appends v. Map keys are written in sorted order so equal
// values encode to equal bytes.
func EncodeValue(e *Encoder, v any) error {
	switch val := v.(type) {
	case nil:
		e.WriteByte(byte(ValueNull))
	case bool:
		e.WriteByte(byte(ValueBool))
		e.WriteBool(val)
	case int:
		e.WriteByte(byte(ValueInt))
		e.WriteSvarint(int64(val))
	case int32:
		e.WriteByte(byte(ValueInt))
		e.WriteSvarint(int64(val))
	case int64:
		e.WriteByte(byte(ValueInt))
		e.WriteSvarint(val)
	case float32:
		e.WriteByte(byte(ValueFloat))
		e.WriteFloat64(float64(val))
	case float64:
		e.WriteByte(byte(ValueFloat))
		e.WriteFloat64(val)
	case string:
		e.WriteByte(byte(ValueString))
		e.WriteString(val)
	case []string:
		e.WriteByte(byte(ValueList))
		e.WriteUvarint(uint64(len(val)))
		for _, s := range val {
			e.WriteByte(byte(ValueString))
			e.WriteString(s)
		}
	case []any:
		e.WriteByte(byte(ValueList))
		e.WriteUvarint(uint64(len(val)))
		for _, item := range val {
			if err := EncodeValue(e, item); err != nil {
				return err
			}
		}
	case map[string]any:
		e.WriteByte(byte(ValueMap))
		return encodeMap(e, val)
	case [][2]string:
		e.WriteByte(byte(ValuePairs))
		e.WriteUvarint(uint64(len(val)))
		for _, pair := range val {
			e.WriteString(pair[0])
			e.WriteString(pair[1])
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return nil
}

func encodeMap(e *Encoder, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	e.WriteUvarint(uint64(len(keys)))
	for _, k := range keys {
		e.WriteString(k)
		if err := EncodeValue(e, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeValue reads a value written by EncodeValue. Integers decode as
// int64 and lists as []any.
func DecodeValue(d *Decoder) (any, error) {
	return decodeValue(d, newDepthContext(MaxValueDepth))
}

func decodeValue(d *Decoder, dc *depthContext) (any, error) {
	typeByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	switch ValueType(typeByte) {
	case ValueNull:
		return nil, nil

	case ValueBool:
		return d.ReadBool()

	case ValueInt:
		return d.ReadSvarint()

	case ValueFloat:
		return d.ReadFloat64()

	case ValueString:
		return d.ReadString()

	case ValueList:
		if err := dc.enter(); err != nil {
			return nil, err
		}
		defer dc.leave()
		count, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		list := make([]any, count)
		for i := range list {
			if list[i], err = decodeValue(d, dc); err != nil {
				return nil, err
			}
		}
		return list, nil

	case ValueMap:
		if err := dc.enter(); err != nil {
			return nil, err
		}
		defer dc.leave()
		return decodeMap(d, dc)

	case ValuePairs:
		count, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		pairs := make([][2]string, count)
		for i := range pairs {
			if pairs[i][0], err = d.ReadString(); err != nil {
				return nil, err
			}
			if pairs[i][1], err = d.ReadString(); err != nil {
				return nil, err
			}
		}
		return pairs, nil

	default:
		return nil, fmt.Errorf("%w: value type 0x%02x", ErrUnknownTag, typeByte)
	}
}

func decodeMap(d *Decoder, dc *depthContext) (map[string]any, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	m := make(map[string]any, count)
	for i := 0; i < count; i++ {
		key, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		if m[key], err = decodeValue(d, dc); err != nil {
			return nil, err
		}
	}
	return m, nil
}
