package state

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/sunmobiir/meetsync/pkg/wire"
)

// ChatView is the chat slice of the session state. Reads return copies;
// local mutations apply immediately and are handed to the publish hook.
type ChatView struct {
	s *Store
}

// Chat returns the chat view.
func (s *Store) Chat() ChatView {
	return ChatView{s: s}
}

// SetCurrentUser records the identity local messages are authored as.
func (v ChatView) SetCurrentUser(userID, userName string) {
	v.s.mu.Lock()
	v.s.currentUserID = userID
	v.s.currentUserName = userName
	v.s.mu.Unlock()
}

// CurrentUser returns the local author identity.
func (v ChatView) CurrentUser() (userID, userName string) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return v.s.currentUserID, v.s.currentUserName
}

// Messages returns the full chat log in insertion order, soft-deleted
// entries included.
func (v ChatView) Messages() []wire.ChatMessage {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]wire.ChatMessage, len(v.s.messages))
	copy(out, v.s.messages)
	return out
}

// Public returns messages visible in the default view: not private, not
// deleted, relative order preserved.
func (v ChatView) Public() []wire.ChatMessage {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return lo.Filter(v.s.messages, func(m wire.ChatMessage, _ int) bool {
		return !m.Private && !m.Deleted
	})
}

// PrivateFor returns non-deleted private messages the given user sent or
// received.
func (v ChatView) PrivateFor(userID string) []wire.ChatMessage {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return lo.Filter(v.s.messages, func(m wire.ChatMessage, _ int) bool {
		return m.Private && !m.Deleted && (m.UserID == userID || m.ToUserID == userID)
	})
}

// ByID looks a message up by id.
func (v ChatView) ByID(id string) (wire.ChatMessage, bool) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return v.s.messageByID(id)
}

// messageByID must be called with the store lock held.
func (s *Store) messageByID(id string) (wire.ChatMessage, bool) {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return s.messages[i], true
		}
	}
	return wire.ChatMessage{}, false
}

// newMessage builds a message authored by the current user. Caller holds
// the store lock.
func (s *Store) newMessage(text string) wire.ChatMessage {
	return wire.ChatMessage{
		ID:         uuid.NewString(),
		Text:       text,
		UserID:     s.currentUserID,
		UserName:   s.currentUserName,
		InsertTime: s.now().UnixMilli(),
		MeetID:     s.meeting.meetID,
	}
}

// Add appends a message authored by the current user and returns it.
// Private messages carry the recipient in toUserID.
func (v ChatView) Add(text string, private bool, toUserID string) wire.ChatMessage {
	v.s.mu.Lock()
	msg := v.s.newMessage(text)
	msg.Private = private
	msg.ToUserID = toUserID
	v.s.messages = append(v.s.messages, msg)
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeChat})
	v.s.publishChat(msg)
	return msg
}

// ReplyTo appends a single-level reply to an existing message, copying the
// original text into ReplyText. Threads are not modeled.
func (v ChatView) ReplyTo(replyID, text string) (wire.ChatMessage, error) {
	v.s.mu.Lock()
	orig, ok := v.s.messageByID(replyID)
	if !ok {
		v.s.mu.Unlock()
		return wire.ChatMessage{}, ErrUnknownMessage
	}
	msg := v.s.newMessage(text)
	msg.Reply = true
	msg.ReplyID = replyID
	msg.ReplyText = orig.Text
	v.s.messages = append(v.s.messages, msg)
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeChat})
	v.s.publishChat(msg)
	return msg, nil
}

// Edit replaces a message's text in place.
func (v ChatView) Edit(id, text string) error {
	v.s.mu.Lock()
	idx := -1
	for i := range v.s.messages {
		if v.s.messages[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		v.s.mu.Unlock()
		return ErrUnknownMessage
	}
	msg := v.s.messages[idx]
	msg.Text = text
	v.s.messages[idx] = msg
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeChat})
	v.s.publishChat(msg)
	return nil
}

// Delete soft-deletes a message. It stays in the log with Deleted set and
// drops out of the public view; nothing is ever hard-removed.
func (v ChatView) Delete(id string) error {
	v.s.mu.Lock()
	idx := -1
	for i := range v.s.messages {
		if v.s.messages[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		v.s.mu.Unlock()
		return ErrUnknownMessage
	}
	msg := v.s.messages[idx]
	msg.Deleted = true
	v.s.messages[idx] = msg
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeChat})
	v.s.publishChat(msg)
	return nil
}

// Clear drops the whole local chat log. Used when leaving a meeting.
func (v ChatView) Clear() {
	v.s.mu.Lock()
	v.s.messages = nil
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeChat})
}
