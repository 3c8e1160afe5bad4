package hub

import (
	"context"
	"testing"

	"github.com/sunmobiir/meetsync/pkg/state"
	"github.com/sunmobiir/meetsync/pkg/wire"
)

func statusEnvelope(ms *wire.MeetStatus) []byte {
	return wire.EncodeEnvelope(&wire.Envelope{Kind: wire.KindMeetStatus, MeetStatus: ms})
}

func chatEnvelope(msg *wire.ChatMessage) []byte {
	return wire.EncodeEnvelope(&wire.Envelope{Kind: wire.KindChatMessage, Chat: msg})
}

func TestDispatchMeetStatusReplacesState(t *testing.T) {
	store := state.New(nil)
	d := New(store, nil)
	ctx := context.Background()

	d.HandleFrame(ctx, statusEnvelope(&wire.MeetStatus{
		MeetID:    7,
		MeetTitle: "algebra",
		Users: map[string]wire.Participant{
			"u1": {ID: "u1", Name: "alice", Role: wire.RoleHost},
			"u2": {ID: "u2", Name: "bob"},
		},
		Chats: map[string]wire.ChatMessage{
			"c1": {ID: "c1", Text: "hello", UserID: "u1", InsertTime: 100},
		},
	}))

	if got := len(store.Roster().Participants()); got != 2 {
		t.Fatalf("roster size = %d, want 2", got)
	}
	if got := len(store.Chat().Messages()); got != 1 {
		t.Fatalf("chat size = %d, want 1", got)
	}
	if got := store.Meeting().Snapshot().Title; got != "algebra" {
		t.Errorf("title = %q, want %q", got, "algebra")
	}

	// A second snapshot replaces, not merges: u2 and c1 are gone.
	d.HandleFrame(ctx, statusEnvelope(&wire.MeetStatus{
		MeetID:    7,
		MeetTitle: "algebra",
		Users: map[string]wire.Participant{
			"u1": {ID: "u1", Name: "alice", Role: wire.RoleHost},
		},
		Chats: map[string]wire.ChatMessage{
			"c2": {ID: "c2", Text: "again", UserID: "u1", InsertTime: 200},
		},
	}))

	roster := store.Roster().Participants()
	if len(roster) != 1 || roster[0].ID != "u1" {
		t.Errorf("roster = %v, want just u1", roster)
	}
	msgs := store.Chat().Messages()
	if len(msgs) != 1 || msgs[0].ID != "c2" {
		t.Errorf("messages = %v, want just c2", msgs)
	}
}

func TestDispatchChatMessageMerges(t *testing.T) {
	store := state.New(nil)
	d := New(store, nil)
	ctx := context.Background()

	d.HandleFrame(ctx, chatEnvelope(&wire.ChatMessage{ID: "c1", Text: "first", InsertTime: 100}))
	d.HandleFrame(ctx, chatEnvelope(&wire.ChatMessage{ID: "c2", Text: "second", InsertTime: 200}))
	if got := len(store.Chat().Messages()); got != 2 {
		t.Fatalf("chat size = %d, want 2", got)
	}

	// Same ID updates in place.
	d.HandleFrame(ctx, chatEnvelope(&wire.ChatMessage{ID: "c1", Text: "edited", InsertTime: 100}))
	msgs := store.Chat().Messages()
	if len(msgs) != 2 {
		t.Fatalf("chat size = %d, want 2", len(msgs))
	}
	got, ok := store.Chat().ByID("c1")
	if !ok || got.Text != "edited" {
		t.Errorf("c1 = %+v, want edited text", got)
	}
}

func TestDispatchMalformedLeavesStateIntact(t *testing.T) {
	store := state.New(nil)
	d := New(store, nil)
	ctx := context.Background()

	d.HandleFrame(ctx, statusEnvelope(&wire.MeetStatus{
		Users: map[string]wire.Participant{"u1": {ID: "u1", Name: "alice"}},
	}))

	for _, payload := range [][]byte{
		nil,
		{},
		{byte(wire.KindMeetStatus)},             // truncated body
		{byte(wire.KindMeetStatus), 0xff, 0xff}, // garbage body
	} {
		d.HandleFrame(ctx, payload)
	}

	roster := store.Roster().Participants()
	if len(roster) != 1 || roster[0].Name != "alice" {
		t.Errorf("roster = %v, want alice untouched", roster)
	}
}

func TestDispatchUnknownKindSkipped(t *testing.T) {
	store := state.New(nil)
	d := New(store, nil)

	d.HandleFrame(context.Background(), []byte{0x7f, 0x01, 0x02, 0x03})

	if got := len(store.Roster().Participants()); got != 0 {
		t.Errorf("roster size = %d, want 0", got)
	}
	if got := len(store.Chat().Messages()); got != 0 {
		t.Errorf("chat size = %d, want 0", got)
	}
}
