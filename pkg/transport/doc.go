// Package transport owns the one logical connection between the meeting
// client and the signaling server.
//
// A Client is explicitly constructed with its endpoint, auth token, and
// channel name, and driven through Start/Stop; there is no process-wide
// singleton. After the WebSocket is dialed the client authenticates
// (Connect/Connected), subscribes to the meeting channel
// (Subscribe/Subscribed), and then pumps publications to its handlers.
//
// Lifecycle is edge-triggered: OnConnecting, OnConnected, OnSubscribed,
// OnDisconnected, OnError, OnPublication. Publications are delivered in
// arrival order from a single read loop, and each handler call runs to
// completion before the next frame is read, so downstream dispatch and
// reconciliation never race themselves. Reconnection after a drop is the
// client's job (exponential backoff with jitter); connection attempts are
// strictly sequential, so a publication from a superseded connection can
// never be delivered after its replacement started.
//
// Errors are non-fatal to the process: a corrupt frame is dropped and
// counted, a network drop triggers reconnect, and only a fatal Error frame
// from the server (bad token, meeting ended) stops the retry loop.
package transport
