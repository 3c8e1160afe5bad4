// Package hub routes decoded server publications into the session state
// store. It is the single entry point for everything the server pushes:
// the transport delivers raw publication payloads one at a time, the
// dispatcher decodes the envelope and applies the message to the store.
//
// Dispatch is deliberately forgiving. A payload that fails to decode is
// counted, logged, and dropped; the session and all previously applied
// state stay intact. Unknown message kinds are skipped the same way so
// that newer servers can ship message types this client does not know
// about yet.
package hub
