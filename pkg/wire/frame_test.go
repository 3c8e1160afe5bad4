package wire

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{name: "empty_payload", frame: Frame{Type: FrameSubscribe, Payload: []byte{}}},
		{name: "publication", frame: Frame{Type: FramePublication, Payload: []byte{0x01, 0x02, 0x03}}},
		{name: "control_with_flags", frame: Frame{Type: FrameControl, Flags: FlagCompressed, Payload: []byte("ping")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded := tc.frame.Encode()
			if len(encoded) != FrameHeaderSize+len(tc.frame.Payload) {
				t.Errorf("Encode() length = %d, want %d", len(encoded), FrameHeaderSize+len(tc.frame.Payload))
			}

			decoded, err := DecodeFrame(encoded)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if decoded.Type != tc.frame.Type {
				t.Errorf("Type = %v, want %v", decoded.Type, tc.frame.Type)
			}
			if decoded.Flags != tc.frame.Flags {
				t.Errorf("Flags = %v, want %v", decoded.Flags, tc.frame.Flags)
			}
			if !reflect.DeepEqual(decoded.Payload, tc.frame.Payload) {
				t.Errorf("Payload = %v, want %v", decoded.Payload, tc.frame.Payload)
			}
		})
	}
}

func TestDecodeFrameTruncated(t *testing.T) {
	full := NewFrame(FramePublication, []byte("hello world")).Encode()

	for cut := 0; cut < len(full); cut++ {
		if _, err := DecodeFrame(full[:cut]); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("DecodeFrame(short %d) error = %v, want io.ErrUnexpectedEOF", cut, err)
		}
	}
}

func TestDecodeFrameOversized(t *testing.T) {
	// Header claiming a payload beyond MaxPayloadSize must be rejected
	// before any allocation happens.
	hdr := []byte{byte(FramePublication), 0x00, 0xff, 0xff, 0xff, 0xff}
	if _, err := DecodeFrame(hdr); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("DecodeFrame(oversized) error = %v, want ErrFrameTooLarge", err)
	}
}

func TestVarintBoundaries(t *testing.T) {
	values := []int64{0, -1, 1, -64, 63, -65, 64, 1<<31 - 1, -(1 << 31), 1<<62 - 1, -(1 << 62)}

	for _, v := range values {
		e := NewEncoder()
		e.WriteSvarint(v)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadSvarint()
		if err != nil {
			t.Fatalf("ReadSvarint(%d) error = %v", v, err)
		}
		if got != v {
			t.Errorf("svarint round trip = %d, want %d", got, v)
		}
		if !d.EOF() {
			t.Errorf("svarint(%d) left %d trailing bytes", v, d.Remaining())
		}
	}
}

func TestControlRoundTrip(t *testing.T) {
	ct, pp := NewPing(1700000000000)
	gotCT, payload, err := DecodeControl(EncodeControl(ct, pp))
	if err != nil {
		t.Fatalf("DecodeControl() error = %v", err)
	}
	if gotCT != ControlPing {
		t.Errorf("control type = %v, want Ping", gotCT)
	}
	if got, ok := payload.(*PingPong); !ok || got.Timestamp != pp.Timestamp {
		t.Errorf("payload = %#v, want timestamp %d", payload, pp.Timestamp)
	}

	ct, cm := NewClose(CloseServerShutdown, "maintenance")
	gotCT, payload, err = DecodeControl(EncodeControl(ct, cm))
	if err != nil {
		t.Fatalf("DecodeControl() error = %v", err)
	}
	if gotCT != ControlClose {
		t.Errorf("control type = %v, want Close", gotCT)
	}
	if got, ok := payload.(*CloseMessage); !ok || got.Reason != CloseServerShutdown || got.Message != "maintenance" {
		t.Errorf("payload = %#v, want shutdown close", payload)
	}
}

func TestErrorMessageRoundTrip(t *testing.T) {
	em := &ErrorMessage{Code: ErrCodeBadToken, Message: "token expired", Fatal: true}
	got, err := DecodeErrorMessage(EncodeErrorMessage(em))
	if err != nil {
		t.Fatalf("DecodeErrorMessage() error = %v", err)
	}
	if !reflect.DeepEqual(got, em) {
		t.Errorf("round trip = %+v, want %+v", got, em)
	}
	if got.Error() == "" {
		t.Errorf("Error() returned empty string")
	}
}

func TestHandshakeRoundTrip(t *testing.T) {
	cr := &ConnectRequest{Version: CurrentVersion, Token: "tok", Client: "meetsync/1.0"}
	gotCR, err := DecodeConnectRequest(EncodeConnectRequest(cr))
	if err != nil {
		t.Fatalf("DecodeConnectRequest() error = %v", err)
	}
	if !reflect.DeepEqual(gotCR, cr) {
		t.Errorf("ConnectRequest round trip = %+v, want %+v", gotCR, cr)
	}

	ca := &ConnectAck{SessionID: "s1", PingInterval: 25, ServerTime: 1700000000000}
	gotCA, err := DecodeConnectAck(EncodeConnectAck(ca))
	if err != nil {
		t.Fatalf("DecodeConnectAck() error = %v", err)
	}
	if !reflect.DeepEqual(gotCA, ca) {
		t.Errorf("ConnectAck round trip = %+v, want %+v", gotCA, ca)
	}

	sa := &SubscribeAck{Channel: "meet-30"}
	gotSA, err := DecodeSubscribeAck(EncodeSubscribeAck(sa))
	if err != nil {
		t.Fatalf("DecodeSubscribeAck() error = %v", err)
	}
	if !reflect.DeepEqual(gotSA, sa) {
		t.Errorf("SubscribeAck round trip = %+v, want %+v", gotSA, sa)
	}
}
