// Package wire implements the binary wire format spoken between the
// meeting client and the signaling server.
//
// Every WebSocket binary message carries exactly one frame:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// Frame types cover the connection handshake (Connect/Connected,
// Subscribe/Subscribed), publications pushed on a meeting channel,
// control messages (ping, pong, close), and error reports.
//
// Publication payloads are envelopes: a one-byte message kind followed by
// the kind-specific body. The two kinds the client understands today are
// MeetStatus (the authoritative meeting snapshot) and ChatMessage (an
// incremental chat delta). Unknown kinds decode into an opaque Raw payload
// so newer servers never break older clients.
//
// Encoding primitives are varints (protobuf-style, zigzag for signed),
// length-prefixed strings and byte blobs, big-endian fixed-width integers,
// and single-byte booleans. Decoding enforces allocation and collection
// limits so a hostile length prefix cannot OOM the client, and every
// malformed buffer surfaces as a *DecodeError rather than a panic.
package wire
