// Package meet wires the transport, dispatcher, and state store into one
// client session. A Session owns the full signaling path for a single
// meeting: it connects, subscribes to the meeting channel, feeds every
// server publication through the dispatcher into the store, and sends
// locally composed chat messages back upstream.
//
// Callers read and mutate meeting state through Session.Store(); the
// store's subscription API delivers change notifications as server
// snapshots are applied.
package meet
