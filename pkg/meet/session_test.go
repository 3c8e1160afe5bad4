package meet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sunmobiir/meetsync/pkg/state"
	"github.com/sunmobiir/meetsync/pkg/transport"
	"github.com/sunmobiir/meetsync/pkg/wire"
)

// startServer runs a one-connection signaling server that performs the
// handshake and then hands the connection to session.
func startServer(t *testing.T, session func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := wire.DecodeFrame(msg)
		if err != nil || frame.Type != wire.FrameConnect {
			t.Errorf("expected Connect frame, got %v (err %v)", frame, err)
			return
		}
		ack := wire.NewFrame(wire.FrameConnected, wire.EncodeConnectAck(&wire.ConnectAck{SessionID: "s1"}))
		if err := conn.WriteMessage(websocket.BinaryMessage, ack.Encode()); err != nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err = conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err = wire.DecodeFrame(msg)
		if err != nil || frame.Type != wire.FrameSubscribe {
			t.Errorf("expected Subscribe frame, got %v (err %v)", frame, err)
			return
		}
		sub, err := wire.DecodeSubscribeRequest(frame.Payload)
		if err != nil {
			t.Errorf("decode subscribe: %v", err)
			return
		}
		subAck := wire.NewFrame(wire.FrameSubscribed, wire.EncodeSubscribeAck(&wire.SubscribeAck{Channel: sub.Channel}))
		if err := conn.WriteMessage(websocket.BinaryMessage, subAck.Encode()); err != nil {
			return
		}

		session(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func publish(t *testing.T, conn *websocket.Conn, env *wire.Envelope) {
	t.Helper()
	frame := wire.NewFrame(wire.FramePublication, wire.EncodeEnvelope(env))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
		t.Errorf("publish: %v", err)
	}
}

func testSessionConfig(url string) Config {
	tc := transport.DefaultConfig()
	tc.MinBackoff = 10 * time.Millisecond
	tc.MaxBackoff = 50 * time.Millisecond
	tc.PingInterval = time.Hour
	return Config{
		Endpoint:  url,
		Token:     "test-token",
		MeetID:    42,
		Transport: tc,
	}
}

func waitChange(t *testing.T, ch <-chan state.Change, want state.ChangeKind) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-ch:
			if c.Kind == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v change", want)
		}
	}
}

func TestSessionAppliesSnapshots(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	url := startServer(t, func(conn *websocket.Conn) {
		publish(t, conn, &wire.Envelope{Kind: wire.KindMeetStatus, MeetStatus: &wire.MeetStatus{
			MeetID:    42,
			MeetTitle: "geometry",
			Self:      &wire.Participant{ID: "u1", Name: "alice", Role: wire.RoleHost},
			Users: map[string]wire.Participant{
				"u1": {ID: "u1", Name: "alice", Role: wire.RoleHost},
				"u2": {ID: "u2", Name: "bob"},
			},
			Chats: map[string]wire.ChatMessage{
				"c1": {ID: "c1", Text: "welcome", UserID: "u1", InsertTime: 100},
			},
		}})
		publish(t, conn, &wire.Envelope{Kind: wire.KindMeetStatus, MeetStatus: &wire.MeetStatus{
			MeetID:    42,
			MeetTitle: "geometry",
			Users: map[string]wire.Participant{
				"u1": {ID: "u1", Name: "alice", Role: wire.RoleHost},
			},
			Chats: map[string]wire.ChatMessage{
				"c2": {ID: "c2", Text: "bob left", UserID: "u1", InsertTime: 200},
			},
		}})
		<-hold
	})

	sess := NewSession(testSessionConfig(url))
	changes := make(chan state.Change, 64)
	unsub := sess.Store().Subscribe(func(c state.Change) { changes <- c })
	defer unsub()

	sess.Start(context.Background())
	defer sess.Stop()

	// Wait until the second snapshot (the one without bob) is applied.
	deadline := time.After(3 * time.Second)
	for {
		waitChange(t, changes, state.ChangeRoster)
		roster := sess.Store().Roster().Participants()
		if len(roster) == 1 && roster[0].ID == "u1" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("roster = %v, want just u1", roster)
		default:
		}
	}

	msgs := sess.Store().Chat().Messages()
	if len(msgs) != 1 || msgs[0].ID != "c2" {
		t.Errorf("messages = %v, want just c2", msgs)
	}
	if got := sess.Store().Meeting().Snapshot().Title; got != "geometry" {
		t.Errorf("title = %q, want %q", got, "geometry")
	}
	me, ok := sess.Store().Roster().Current()
	if !ok || me.ID != "u1" || me.Role != wire.RoleHost {
		t.Errorf("current = %+v, want host u1", me)
	}
}

func TestSessionStopSettlesConnectionState(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	url := startServer(t, func(conn *websocket.Conn) { <-hold })

	sess := NewSession(testSessionConfig(url))
	changes := make(chan state.Change, 64)
	unsub := sess.Store().Subscribe(func(c state.Change) { changes <- c })
	defer unsub()

	sess.Start(context.Background())
	for sess.ConnectionState() != transport.StateSubscribed {
		waitChange(t, changes, state.ChangeConnection)
	}

	sess.Stop()
	if got := sess.Store().ConnectionState(); got != transport.StateDisconnected {
		t.Errorf("store connection state after Stop = %v, want %v", got, transport.StateDisconnected)
	}
	if got := sess.ConnectionState(); got != transport.StateDisconnected {
		t.Errorf("client state after Stop = %v, want %v", got, transport.StateDisconnected)
	}
}

func TestNewSessionLeavesTransportConfigUntouched(t *testing.T) {
	tc := transport.DefaultConfig()
	tc.PingInterval = time.Hour

	NewSession(Config{
		Endpoint:  "ws://example.invalid/ws",
		Token:     "tok",
		MeetID:    9,
		Transport: tc,
	})

	if tc.Endpoint != "" || tc.Token != "" || tc.Channel != "" {
		t.Errorf("caller config mutated: endpoint=%q token=%q channel=%q",
			tc.Endpoint, tc.Token, tc.Channel)
	}
}

func TestSessionPublishesLocalChat(t *testing.T) {
	received := make(chan *wire.Envelope, 1)
	hold := make(chan struct{})
	defer close(hold)
	url := startServer(t, func(conn *websocket.Conn) {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := wire.DecodeFrame(msg)
		if err != nil || frame.Type != wire.FramePublication {
			t.Errorf("expected Publication, got %v (err %v)", frame, err)
			return
		}
		env, err := wire.DecodeEnvelope(frame.Payload)
		if err != nil {
			t.Errorf("decode envelope: %v", err)
			return
		}
		received <- env
		<-hold
	})

	sess := NewSession(testSessionConfig(url))
	changes := make(chan state.Change, 64)
	unsub := sess.Store().Subscribe(func(c state.Change) { changes <- c })
	defer unsub()

	sess.Start(context.Background())
	defer sess.Stop()
	waitChange(t, changes, state.ChangeConnection)
	for sess.ConnectionState() != transport.StateSubscribed {
		waitChange(t, changes, state.ChangeConnection)
	}

	sess.Store().Chat().SetCurrentUser("u1", "alice")
	local := sess.Store().Chat().Add("hi everyone", false, "")

	select {
	case env := <-received:
		if env.Kind != wire.KindChatMessage {
			t.Fatalf("kind = %v, want %v", env.Kind, wire.KindChatMessage)
		}
		if env.Chat.ID != local.ID || env.Chat.Text != "hi everyone" {
			t.Errorf("published chat = %+v, want local message", env.Chat)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for published chat")
	}

	// The optimistic local copy stays in the store.
	if _, ok := sess.Store().Chat().ByID(local.ID); !ok {
		t.Error("local chat message missing from store")
	}
}
