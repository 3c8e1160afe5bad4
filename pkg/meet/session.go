package meet

import (
	"context"
	"log/slog"

	"github.com/sunmobiir/meetsync/pkg/hub"
	"github.com/sunmobiir/meetsync/pkg/state"
	"github.com/sunmobiir/meetsync/pkg/transport"
	"github.com/sunmobiir/meetsync/pkg/wire"
)

// Config configures a meeting session.
type Config struct {
	// Endpoint is the signaling server WebSocket URL.
	Endpoint string

	// Token is the per-session credential issued at login.
	Token string

	// MeetID selects the meeting channel to subscribe to.
	MeetID int64

	// Logger may be nil, in which case slog.Default() is used.
	Logger *slog.Logger

	// Transport overrides timeouts and backoff. Nil means defaults.
	Transport *transport.Config
}

// Session is one connected meeting. Create with NewSession, then Start.
type Session struct {
	store      *state.Store
	dispatcher *hub.Dispatcher
	client     *transport.Client
	logger     *slog.Logger
}

// NewSession builds the session wiring without connecting.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("meet_id", cfg.MeetID)

	store := state.New(logger)
	store.Meeting().SetMeetID(cfg.MeetID)
	dispatcher := hub.New(store, logger)

	tc := transport.DefaultConfig()
	if cfg.Transport != nil {
		copied := *cfg.Transport
		tc = &copied
	}
	tc.Endpoint = cfg.Endpoint
	tc.Token = cfg.Token
	tc.Channel = transport.Channel(cfg.MeetID)

	s := &Session{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
	s.client = transport.New(tc, transport.Handlers{
		OnConnecting: func() {
			store.SetConnectionState(transport.StateConnecting)
		},
		OnConnected: func(sessionID string) {
			store.SetConnectionState(transport.StateConnected)
		},
		OnSubscribed: func(channel string) {
			store.SetConnectionState(transport.StateSubscribed)
		},
		OnDisconnected: func(reason string) {
			store.SetConnectionState(transport.StateDisconnected)
			logger.Info("disconnected", "reason", reason)
		},
		OnError: func(err error) {
			logger.Error("transport error", "error", err)
		},
		OnPublication: func(payload []byte) {
			dispatcher.HandleFrame(context.Background(), payload)
		},
	}, logger)
	store.SetPublisher(chatPublisher{client: s.client})

	return s
}

// Start connects and begins syncing. Idempotent.
func (s *Session) Start(ctx context.Context) {
	s.client.Start(ctx)
}

// Stop disconnects and stops reconnect attempts. The store keeps its
// last applied state and remains readable after Stop.
func (s *Session) Stop() {
	s.client.Stop()
	// A local stop ends the read loop without a disconnect event, so the
	// observable connection signal is settled here.
	s.store.SetConnectionState(transport.StateDisconnected)
}

// Store exposes the session state for reads, mutations, and change
// subscriptions.
func (s *Session) Store() *state.Store {
	return s.store
}

// ConnectionState reports the transport state.
func (s *Session) ConnectionState() transport.State {
	return s.client.State()
}

// chatPublisher sends locally composed chat messages upstream as
// publications on the meeting channel.
type chatPublisher struct {
	client *transport.Client
}

func (p chatPublisher) PublishChat(msg wire.ChatMessage) error {
	payload := wire.EncodeEnvelope(&wire.Envelope{
		Kind: wire.KindChatMessage,
		Chat: &msg,
	})
	return p.client.Publish(payload)
}
