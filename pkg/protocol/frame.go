package protocol

import (
	"errors"
	"io"

	"github.com/vango-dev/plop/pkg/vdom"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 6

	// MaxPayloadSize bounds a frame payload (16MB).
	MaxPayloadSize = 16 * 1024 * 1024
)

// FrameType identifies what a frame carries.
type FrameType uint8

const (
	FramePatch FrameType = 0x01 // A patch tree
	FrameEvent FrameType = 0x02 // A remote event
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FramePatch:
		return "Patch"
	case FrameEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// FrameFlags are optional flags for frame processing.
type FrameFlags uint8

const (
	FlagFinal FrameFlags = 0x01 // Last frame of a stream
)

// Has returns true if the flags contain the specified flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is one length-delimited message in a stream of patches or events.
//
// Wire format (6 byte header + payload):
//
//	[Type: 1 byte][Flags: 1 byte][Payload length: 4 bytes, big-endian][Payload]
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a frame with the given type and payload.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() []byte {
	e := &Encoder{buf: make([]byte, 0, FrameHeaderSize+len(f.Payload))}
	e.WriteByte(byte(f.Type))
	e.WriteByte(byte(f.Flags))
	e.WriteUint32(uint32(len(f.Payload)))
	e.WriteBytes(f.Payload)
	return e.Bytes()
}

// ReadFrame reads a complete frame from r. It returns io.EOF only when r
// ends cleanly between frames.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	ft := FrameType(header[0])
	if ft != FramePatch && ft != FrameEvent {
		return nil, ErrInvalidFrameType
	}
	length, _ := NewDecoder(header[2:]).ReadUint32()
	if length > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &Frame{Type: ft, Flags: FrameFlags(header[1]), Payload: payload}, nil
}

// WriteFrame writes a complete frame to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}

// WritePatch marshals p and writes it as a patch frame.
func WritePatch(w io.Writer, p *vdom.Patch, flags FrameFlags) error {
	data, err := MarshalPatch(p)
	if err != nil {
		return err
	}
	return WriteFrame(w, &Frame{Type: FramePatch, Flags: flags, Payload: data})
}
