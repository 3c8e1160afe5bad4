package state

import (
	"sort"

	"github.com/samber/lo"

	"github.com/sunmobiir/meetsync/pkg/wire"
)

// ApplyMeetStatus reconciles an authoritative snapshot into the store.
// Collections the snapshot carries are replaced wholesale: a roster entry
// absent from the snapshot is gone, a chat log in the snapshot supersedes
// the local one. Optional sections the snapshot omits (Self, Permission,
// Quiz, the opaque DTOs) leave current values untouched.
//
// The whole pass commits under one lock and subscribers are notified once
// per changed slice afterwards, so no observer can see the new roster next
// to the old chat log.
func (s *Store) ApplyMeetStatus(ms *wire.MeetStatus) {
	if ms == nil {
		return
	}

	s.mu.Lock()

	roster := lo.Values(ms.Users)
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	s.roster = roster

	// Public and private logs arrive as separate maps keyed by message id.
	// Map iteration order is not chronological, so the merged log is
	// ordered by insert time (id as tiebreaker) to keep reads stable.
	messages := append(lo.Values(ms.Chats), lo.Values(ms.PrivateChats)...)
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].InsertTime != messages[j].InsertTime {
			return messages[i].InsertTime < messages[j].InsertTime
		}
		return messages[i].ID < messages[j].ID
	})
	s.messages = messages

	s.meeting.meetID = ms.MeetID
	s.meeting.title = ms.MeetTitle
	s.meeting.token = ms.Token
	s.meeting.mediaServer = ms.MediaServer
	s.meeting.activePanel = ms.ActivePanel

	files := make(map[int64]wire.FileInfo, len(ms.Files))
	for id, f := range ms.Files {
		files[id] = f
	}
	s.meeting.files = files

	if ms.Self != nil {
		self := *ms.Self
		s.current = &self
		s.currentUserID = self.ID
		s.currentUserName = self.Name
	}
	if ms.Permission != nil {
		perm := *ms.Permission
		s.meeting.permission = &perm
	}

	quizChanged := false
	if ms.Quiz != nil {
		s.questions = append([]wire.QuizQuestion(nil), ms.Quiz.Questions...)
		responses := make(map[string]int, len(ms.Quiz.Responses))
		for id, idx := range ms.Quiz.Responses {
			responses[id] = idx
		}
		s.responses = responses
		quizChanged = true
	}

	if ms.OfficeFile != nil {
		s.meeting.officeFile = ms.OfficeFile
	}
	if ms.VideoPlayer != nil {
		s.meeting.videoPlayer = ms.VideoPlayer
	}
	if ms.DesktopStreaming != nil {
		s.meeting.desktopStreaming = ms.DesktopStreaming
	}
	if ms.Recorder != nil {
		s.meeting.recorder = ms.Recorder
	}
	if ms.ClientConfig != nil {
		s.meeting.clientConfig = ms.ClientConfig
	}

	s.mu.Unlock()

	changes := []Change{
		{Kind: ChangeRoster},
		{Kind: ChangeChat},
		{Kind: ChangeMeeting},
	}
	if quizChanged {
		changes = append(changes, Change{Kind: ChangeQuiz})
	}
	s.notify(changes...)
}

// ApplyChatMessage merges one incremental chat entry by key: an existing
// message with the same id is replaced in place, anything else appends.
func (s *Store) ApplyChatMessage(msg *wire.ChatMessage) {
	if msg == nil {
		return
	}

	s.mu.Lock()
	replaced := false
	for i := range s.messages {
		if s.messages[i].ID == msg.ID {
			s.messages[i] = *msg
			replaced = true
			break
		}
	}
	if !replaced {
		s.messages = append(s.messages, *msg)
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeChat})
}
