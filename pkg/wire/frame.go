package wire

import (
	"errors"
	"io"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 6

	// MaxPayloadSize bounds the payload of a single frame. A full meeting
	// snapshot (roster plus chat log) must fit in one publication frame.
	MaxPayloadSize = MaxAllocation
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameConnect     FrameType = 0x00 // Client → server auth hello
	FrameConnected   FrameType = 0x01 // Server ack with session identity
	FrameSubscribe   FrameType = 0x02 // Client → server channel subscription
	FrameSubscribed  FrameType = 0x03 // Server subscription ack
	FramePublication FrameType = 0x04 // Server → client envelope push
	FrameControl     FrameType = 0x05 // Ping, pong, close
	FrameError       FrameType = 0x06 // Error report
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameConnect:
		return "Connect"
	case FrameConnected:
		return "Connected"
	case FrameSubscribe:
		return "Subscribe"
	case FrameSubscribed:
		return "Subscribed"
	case FramePublication:
		return "Publication"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags are optional flags for frame processing.
type FrameFlags uint8

const (
	// FlagCompressed marks a compressed payload. Reserved; the client
	// rejects it until the server side ships compression.
	FlagCompressed FrameFlags = 0x01
)

// Has reports whether the flags contain flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge = errors.New("wire: frame payload too large")
)

// Frame is a single protocol frame: header plus payload.
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
	n := len(f.Payload)
	buf := make([]byte, FrameHeaderSize+n)
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	buf[2] = byte(n >> 24)
	buf[3] = byte(n >> 16)
	buf[4] = byte(n >> 8)
	buf[5] = byte(n)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// DecodeFrame decodes a frame from data. Data must contain the full header
// and payload; WebSocket message boundaries guarantee that in practice.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}

	ft := FrameType(data[0])
	flags := FrameFlags(data[1])
	length := int(data[2])<<24 | int(data[3])<<16 | int(data[4])<<8 | int(data[5])

	if length > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	if len(data) < FrameHeaderSize+length {
		return nil, io.ErrUnexpectedEOF
	}

	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:FrameHeaderSize+length])

	return &Frame{Type: ft, Flags: flags, Payload: payload}, nil
}
