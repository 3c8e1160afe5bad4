package wire

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

func sampleParticipant(id, name string, role Role) Participant {
	return Participant{
		ID:   id,
		Name: name,
		Role: role,
		Permission: Permission{
			Audio: true,
			Chat:  true,
			Video: role == RoleHost,
			Board: role == RoleHost,
		},
	}
}

func sampleChatMessage(id, text, userID string) ChatMessage {
	return ChatMessage{
		ID:         id,
		Text:       text,
		UserID:     userID,
		UserName:   "User " + userID,
		InsertTime: 1700000000000,
		MeetID:     30,
	}
}

func sampleMeetStatus() *MeetStatus {
	self := sampleParticipant("1", "John Doe", RoleHost)
	perm := Permission{Audio: true, Video: true, Screen: true}
	return &MeetStatus{
		MeetID:      30,
		MeetTitle:   "Algebra II",
		Token:       "d2c9f7pn4tjh7d2q06p0",
		MediaServer: "wss://media.example.com",
		ActivePanel: PanelWhiteboard,
		Self:        &self,
		Permission:  &perm,
		Users: map[string]Participant{
			"1": sampleParticipant("1", "John Doe", RoleHost),
			"2": sampleParticipant("2", "Alice Smith", RoleParticipant),
		},
		Chats: map[string]ChatMessage{
			"c1": sampleChatMessage("c1", "Welcome to the meeting!", "1"),
			"c2": sampleChatMessage("c2", "Hello everyone!", "2"),
		},
		Files: map[int64]FileInfo{
			7: {ID: 7, Name: "slides.pdf", Size: 1 << 20, URL: "/files/7"},
		},
		Quiz: &Quiz{
			Questions: []QuizQuestion{
				{
					ID:           "q1",
					Text:         "Is the whiteboard shared?",
					Type:         QuestionYesNo,
					Options:      []string{"Yes", "No"},
					CorrectIndex: 0,
				},
			},
			Responses: map[string]int{"q1": 0},
		},
		Recorder: []byte{0xde, 0xad, 0xbe, 0xef},
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		env  *Envelope
	}{
		{
			name: "meet_status_full",
			env:  &Envelope{Kind: KindMeetStatus, MeetStatus: sampleMeetStatus()},
		},
		{
			name: "meet_status_minimal",
			env: &Envelope{
				Kind:       KindMeetStatus,
				MeetStatus: &MeetStatus{MeetID: 5, MeetTitle: "Empty room"},
			},
		},
		{
			name: "meet_status_no_optional_sections",
			env: &Envelope{
				Kind: KindMeetStatus,
				MeetStatus: &MeetStatus{
					MeetID: 30,
					Users: map[string]Participant{
						"9": sampleParticipant("9", "Carol", RoleParticipant),
					},
				},
			},
		},
		{
			name: "chat_message",
			env: &Envelope{
				Kind: KindChatMessage,
				Chat: &ChatMessage{
					ID:         "m1",
					Text:       "ok",
					UserID:     "2",
					UserName:   "Alice Smith",
					InsertTime: 1700000001234,
					MeetID:     30,
					Reply:      true,
					ReplyID:    "m0",
					ReplyText:  "are we starting?",
				},
			},
		},
		{
			name: "chat_message_private",
			env: &Envelope{
				Kind: KindChatMessage,
				Chat: &ChatMessage{
					ID:       "m2",
					Text:     "psst",
					UserID:   "2",
					Private:  true,
					ToUserID: "1",
					MeetID:   30,
				},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := EncodeEnvelope(tc.env)
			got, err := DecodeEnvelope(data)
			if err != nil {
				t.Fatalf("DecodeEnvelope() error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.env) {
				t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, tc.env)
			}
		})
	}
}

func TestDecodeEnvelopeDeterministic(t *testing.T) {
	data := EncodeEnvelope(&Envelope{Kind: KindMeetStatus, MeetStatus: sampleMeetStatus()})

	first, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	second, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same bytes decoded to different envelopes")
	}
}

func TestDecodeEnvelopeUnknownKind(t *testing.T) {
	data := []byte{0x7f, 0x01, 0x02, 0x03}

	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v, want nil for unknown kind", err)
	}
	if env.Kind != MessageKind(0x7f) {
		t.Errorf("Kind = %v, want 0x7f", env.Kind)
	}
	if !reflect.DeepEqual(env.Raw, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("Raw = %v, want payload preserved", env.Raw)
	}
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "kind_only_meet_status", data: []byte{byte(KindMeetStatus)}},
		{name: "kind_only_chat", data: []byte{byte(KindChatMessage)}},
		{
			name: "truncated_meet_status",
			data: EncodeEnvelope(&Envelope{Kind: KindMeetStatus, MeetStatus: sampleMeetStatus()})[:20],
		},
		{
			name: "truncated_chat",
			data: EncodeEnvelope(&Envelope{Kind: KindChatMessage, Chat: &ChatMessage{ID: "m1", Text: "hello"}})[:5],
		},
		{
			// Kind byte, then a chat map count claiming more entries than
			// the buffer can hold.
			name: "hostile_collection_count",
			data: []byte{byte(KindMeetStatus), 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0x03},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := DecodeEnvelope(tc.data)
			if err == nil {
				t.Fatalf("DecodeEnvelope() = %+v, want error", env)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("error type = %T, want *DecodeError", err)
			}
		})
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	_, err := DecodeEnvelope([]byte{byte(KindChatMessage)})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("errors.Is(err, io.ErrUnexpectedEOF) = false, err = %v", err)
	}
}

func TestPermissionBitsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		perm Permission
	}{
		{name: "none", perm: Permission{}},
		{name: "all", perm: Permission{true, true, true, true, true, true, true, true}},
		{name: "audio_chat", perm: Permission{Audio: true, Chat: true}},
		{name: "host_set", perm: Permission{Audio: true, Video: true, Screen: true, Board: true, File: true, Player: true, Office: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PermissionFromBits(tc.perm.Bits())
			if got != tc.perm {
				t.Errorf("PermissionFromBits(Bits()) = %+v, want %+v", got, tc.perm)
			}
		})
	}
}

func FuzzDecodeEnvelope(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{byte(KindMeetStatus)})
	f.Add([]byte{byte(KindChatMessage), 0x01, 'x'})
	f.Add(EncodeEnvelope(&Envelope{Kind: KindMeetStatus, MeetStatus: sampleMeetStatus()}))
	f.Add(EncodeEnvelope(&Envelope{Kind: KindChatMessage, Chat: &ChatMessage{ID: "m", Text: "t"}}))

	f.Fuzz(func(t *testing.T, data []byte) {
		env, err := DecodeEnvelope(data)
		if err != nil {
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("error type = %T, want *DecodeError", err)
			}
			return
		}
		// Valid envelopes must re-decode identically after re-encoding.
		again, err := DecodeEnvelope(EncodeEnvelope(env))
		if err != nil {
			t.Fatalf("re-decode error = %v", err)
		}
		if env.Kind != again.Kind {
			t.Errorf("kind changed across re-encode: %v != %v", env.Kind, again.Kind)
		}
	})
}
