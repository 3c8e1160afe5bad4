package wire

import (
	"errors"
	"fmt"
)

// MessageKind tags which case of the envelope union is populated.
type MessageKind uint8

const (
	// KindNone is an empty envelope. Never sent; the zero value.
	KindNone MessageKind = 0x00

	// KindMeetStatus carries the authoritative meeting snapshot.
	KindMeetStatus MessageKind = 0x01

	// KindChatMessage carries a single incremental chat entry.
	KindChatMessage MessageKind = 0x02
)

// String returns the string representation of the message kind.
func (mk MessageKind) String() string {
	switch mk {
	case KindNone:
		return "None"
	case KindMeetStatus:
		return "MeetStatus"
	case KindChatMessage:
		return "ChatMessage"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", uint8(mk))
	}
}

// ErrEmptyEnvelope is returned when decoding a zero-length buffer.
var ErrEmptyEnvelope = errors.New("wire: empty envelope")

// Envelope is the tagged union carried by publication frames. Exactly one
// case is populated per message. Kinds this client does not know decode
// into Raw so a newer server never breaks dispatch.
type Envelope struct {
	Kind MessageKind

	MeetStatus *MeetStatus
	Chat       *ChatMessage
	Raw        []byte
}

// DecodeError reports a malformed envelope. It records the offset the
// decoder had reached, which makes corrupt-frame logs actionable.
type DecodeError struct {
	Kind   MessageKind
	Offset int
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("wire: decode %s at offset %d: %v", e.Kind, e.Offset, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeEnvelope encodes an envelope to bytes: one kind byte followed by
// the kind-specific body.
func EncodeEnvelope(env *Envelope) []byte {
	e := NewEncoder()
	e.WriteByte(byte(env.Kind))

	switch env.Kind {
	case KindMeetStatus:
		if env.MeetStatus != nil {
			encodeMeetStatusTo(e, env.MeetStatus)
		}
	case KindChatMessage:
		if env.Chat != nil {
			encodeChatMessageTo(e, env.Chat)
		}
	default:
		e.WriteBytes(env.Raw)
	}
	return e.Bytes()
}

// DecodeEnvelope decodes an envelope from buf. It is a pure function of
// its input: the same bytes always yield the same envelope. Malformed or
// truncated buffers return a *DecodeError and never panic.
func DecodeEnvelope(buf []byte) (*Envelope, error) {
	if len(buf) == 0 {
		return nil, &DecodeError{Kind: KindNone, Offset: 0, Err: ErrEmptyEnvelope}
	}

	d := NewDecoder(buf)
	kindByte, _ := d.ReadByte()
	kind := MessageKind(kindByte)
	env := &Envelope{Kind: kind}

	switch kind {
	case KindMeetStatus:
		ms, err := decodeMeetStatusFrom(d)
		if err != nil {
			return nil, &DecodeError{Kind: kind, Offset: d.Position(), Err: err}
		}
		env.MeetStatus = ms

	case KindChatMessage:
		m, err := decodeChatMessageFrom(d)
		if err != nil {
			return nil, &DecodeError{Kind: kind, Offset: d.Position(), Err: err}
		}
		env.Chat = &m

	default:
		// Forward compatible: keep the payload around for callers that
		// want to inspect it, report no error.
		if d.Remaining() > 0 {
			raw := make([]byte, d.Remaining())
			copy(raw, buf[d.Position():])
			env.Raw = raw
		}
	}
	return env, nil
}
