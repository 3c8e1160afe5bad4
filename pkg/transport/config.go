package transport

import (
	"strconv"
	"time"
)

// Config holds configuration for a Client.
type Config struct {
	// Endpoint is the WebSocket URL of the signaling server,
	// e.g. "ws://localhost:8003/wsroom".
	Endpoint string

	// Token is the opaque per-session credential sent in the Connect
	// handshake.
	Token string

	// Channel is the meeting-scoped channel to subscribe to.
	// Use Channel() to derive it from a meeting id.
	Channel string

	// ClientName identifies this client in server-side logs.
	// Default: "meetsync".
	ClientName string

	// HandshakeTimeout bounds the WebSocket dial and each handshake step.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// ReadTimeout is the maximum time to wait for any frame from the
	// server before the connection is considered dead.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is the time between heartbeat pings.
	// Default: 25 seconds.
	PingInterval time.Duration

	// MinBackoff is the initial reconnect delay.
	// Default: 500 milliseconds.
	MinBackoff time.Duration

	// MaxBackoff caps the reconnect delay.
	// Default: 30 seconds.
	MaxBackoff time.Duration
}

// DefaultConfig returns a Config with sensible defaults. Endpoint, Token,
// and Channel must still be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		ClientName:       "meetsync",
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     25 * time.Second,
		MinBackoff:       500 * time.Millisecond,
		MaxBackoff:       30 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	out := *c
	if out.ClientName == "" {
		out.ClientName = def.ClientName
	}
	if out.HandshakeTimeout == 0 {
		out.HandshakeTimeout = def.HandshakeTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = def.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = def.WriteTimeout
	}
	if out.PingInterval == 0 {
		out.PingInterval = def.PingInterval
	}
	if out.MinBackoff == 0 {
		out.MinBackoff = def.MinBackoff
	}
	if out.MaxBackoff == 0 {
		out.MaxBackoff = def.MaxBackoff
	}
	return &out
}

// Channel derives the channel name for a meeting id: "meet-" + id.
func Channel(meetID int64) string {
	return "meet-" + strconv.FormatInt(meetID, 10)
}
