package wire

// ErrorCode identifies the class of a server-reported error.
type ErrorCode uint16

const (
	ErrCodeUnknown       ErrorCode = 0x0000
	ErrCodeInvalidFrame  ErrorCode = 0x0001
	ErrCodeBadToken      ErrorCode = 0x0002
	ErrCodeBadChannel    ErrorCode = 0x0003
	ErrCodeRateLimited   ErrorCode = 0x0004
	ErrCodeMeetingEnded  ErrorCode = 0x0005
	ErrCodeServerError   ErrorCode = 0x0100
	ErrCodeNotAuthorized ErrorCode = 0x0101
)

// String returns the string representation of the error code.
func (ec ErrorCode) String() string {
	switch ec {
	case ErrCodeInvalidFrame:
		return "InvalidFrame"
	case ErrCodeBadToken:
		return "BadToken"
	case ErrCodeBadChannel:
		return "BadChannel"
	case ErrCodeRateLimited:
		return "RateLimited"
	case ErrCodeMeetingEnded:
		return "MeetingEnded"
	case ErrCodeServerError:
		return "ServerError"
	case ErrCodeNotAuthorized:
		return "NotAuthorized"
	default:
		return "Unknown"
	}
}

// ErrorMessage is the payload of a FrameError. Fatal errors mean the server
// will not accept a retry with the same credentials; the transport stops
// reconnecting when it sees one.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Code.String() + ": " + em.Message
	}
	return em.Code.String() + ": " + em.Message
}

// EncodeErrorMessage encodes an ErrorMessage to bytes.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage from bytes.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	em := &ErrorMessage{}

	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	em.Code = ErrorCode(code)

	if em.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return em, nil
}
