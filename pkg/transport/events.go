package transport

// State is the connection lifecycle state.
type State uint8

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateSubscribed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateSubscribed:
		return "Subscribed"
	default:
		return "Unknown"
	}
}

// Handlers are the edge-triggered lifecycle callbacks a Client invokes.
// Any field may be nil. All callbacks run on the client's connection
// goroutine: a slow OnPublication delays the next frame, which is exactly
// the ordering guarantee the state reconciler depends on.
type Handlers struct {
	// OnConnecting fires when a connection attempt starts, including
	// reconnect attempts.
	OnConnecting func()

	// OnConnected fires after the auth handshake succeeds.
	OnConnected func(sessionID string)

	// OnSubscribed fires after the channel subscription is acknowledged.
	OnSubscribed func(channel string)

	// OnDisconnected fires when an established connection ends, with a
	// human-readable reason.
	OnDisconnected func(reason string)

	// OnError fires on connection-level failures and server Error
	// frames. Errors are informational; recovery is the client's job.
	OnError func(err error)

	// OnPublication fires for every publication payload received on the
	// subscribed channel, in arrival order.
	OnPublication func(payload []byte)
}

func (h *Handlers) connecting() {
	if h.OnConnecting != nil {
		h.OnConnecting()
	}
}

func (h *Handlers) connected(sessionID string) {
	if h.OnConnected != nil {
		h.OnConnected(sessionID)
	}
}

func (h *Handlers) subscribed(channel string) {
	if h.OnSubscribed != nil {
		h.OnSubscribed(channel)
	}
}

func (h *Handlers) disconnected(reason string) {
	if h.OnDisconnected != nil {
		h.OnDisconnected(reason)
	}
}

func (h *Handlers) error(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

func (h *Handlers) publication(payload []byte) {
	if h.OnPublication != nil {
		h.OnPublication(payload)
	}
}
