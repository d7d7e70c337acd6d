package vdom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Fielder is implemented by live event payloads. Fields returns a snapshot
// of the event as nested maps, using the same shape as remote payloads.
type Fielder interface {
	Fields() map[string]any
}

// ErrMissingField is returned by decoders when a payload lacks a field.
var ErrMissingField = errors.New("vdom: missing field")

// Fields returns the payload as a map, or nil if it has no fields.
func Fields(payload any) map[string]any {
	switch p := payload.(type) {
	case map[string]any:
		return p
	case Fielder:
		return p.Fields()
	default:
		return nil
	}
}

// Field looks up a dotted path such as "target.value" in a payload.
func Field(payload any, path string) (any, bool) {
	var cur any = Fields(payload)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Succeed ignores the payload and always produces msg.
func Succeed(msg any) Decoder {
	return func(any) (any, error) { return msg, nil }
}

// DecodeString decodes the string at path and passes it to fn.
func DecodeString(path string, fn func(string) any) Decoder {
	return func(payload any) (any, error) {
		v, ok := Field(payload, path)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, path)
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("vdom: field %s is %T, not string", path, v)
		}
		return fn(s), nil
	}
}

// DecodeBool decodes the boolean at path and passes it to fn.
func DecodeBool(path string, fn func(bool) any) Decoder {
	return func(payload any) (any, error) {
		v, ok := Field(payload, path)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, path)
		}
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("vdom: field %s is %T, not bool", path, v)
		}
		return fn(b), nil
	}
}

// DecodeFormData decodes detail.formData, the name/value pairs captured from
// a submitted form.
func DecodeFormData(fn func([][2]string) any) Decoder {
	return func(payload any) (any, error) {
		v, ok := Field(payload, "detail.formData")
		if !ok {
			return nil, fmt.Errorf("%w: detail.formData", ErrMissingField)
		}
		switch entries := v.(type) {
		case [][2]string:
			return fn(entries), nil
		case []any:
			out := make([][2]string, 0, len(entries))
			for _, e := range entries {
				pair, ok := e.([]any)
				if !ok || len(pair) != 2 {
					return nil, fmt.Errorf("vdom: malformed form entry %v", e)
				}
				out = append(out, [2]string{fmt.Sprint(pair[0]), fmt.Sprint(pair[1])})
			}
			return fn(out), nil
		default:
			return nil, fmt.Errorf("vdom: detail.formData is %T", v)
		}
	}
}

// DecodeInto decodes the whole payload into a T using mapstructure, with
// json tags and weak typing so remote string payloads map onto numbers.
func DecodeInto[T any](fn func(T) any) Decoder {
	return func(payload any) (any, error) {
		fields := Fields(payload)
		if fields == nil {
			return nil, fmt.Errorf("vdom: payload %T has no fields", payload)
		}
		var out T
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           &out,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(fields); err != nil {
			return nil, fmt.Errorf("vdom: decode %T: %w", out, err)
		}
		return fn(out), nil
	}
}
