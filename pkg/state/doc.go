// Package state holds the canonical, observable session state for one
// meeting: roster, chat log, meeting status, and quiz. UI collaborators
// keep no copies of their own; they read through the typed sub-views
// (Roster, Chat, Meeting, Quiz) and subscribe for change notifications.
//
// All mutation, local user actions and reconciliation passes from incoming
// server snapshots alike, is serialized under one lock, so a roster
// replacement and its matching chat replacement become visible to
// subscribers in the same pass with no mismatch window. Notifications use
// copy-before-notify: subscriber callbacks run outside the store lock and
// may safely read back into the store.
//
// Local mutations are optimistic: they apply synchronously and are handed
// to the optional Publisher hook for upstream delivery. A nil Publisher
// means local-only operation, which is what the UI uses in tests and
// offline mode.
package state
