// Package protocol is the binary encoding of patches, virtual nodes and
// remote events, for running the diff headlessly and shipping its output
// elsewhere. It defines bytes only; moving them is the caller's business.
//
// # Encoding
//
//   - Varint: compact unsigned integers (protobuf-style)
//   - ZigZag: signed integers as unsigned varints
//   - Length-prefixed: strings prefixed with a varint length
//   - Tagged values: property values and event payloads carry a type byte
//
// Decoding enforces limits on string sizes, collection counts and nesting
// depth, so untrusted input fails with an error instead of exhausting
// memory or stack.
//
// # Frames
//
// A stream is a sequence of frames, each a 6 byte header followed by a
// payload:
//
//	[Type: 1 byte][Flags: 1 byte][Length: 4 bytes, big-endian][Payload]
//
// FramePatch carries a patch from MarshalPatch; FrameEvent carries an
// event from MarshalEvent.
//
// # Usage
//
//	patch, reg = vdom.Diff(reg, prev, next)
//	if err := protocol.WritePatch(w, patch, 0); err != nil {
//	    return err
//	}
//
//	f, err := protocol.ReadFrame(r)
//	patch, err := protocol.UnmarshalPatch(f.Payload)
package protocol
