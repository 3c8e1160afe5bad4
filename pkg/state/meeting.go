package state

import (
	"sort"

	"github.com/samber/lo"

	"github.com/sunmobiir/meetsync/pkg/wire"
)

// Meeting is a read-only snapshot of the meeting-level state.
type Meeting struct {
	MeetID      int64
	Title       string
	Token       string
	MediaServer string
	ActivePanel wire.ActivePanel
	Permission  *wire.Permission

	// Opaque DTOs passed through from the last snapshot.
	OfficeFile       []byte
	VideoPlayer      []byte
	DesktopStreaming []byte
	Recorder         []byte
	ClientConfig     []byte
}

// MeetingView is the meeting-level slice of the session state.
type MeetingView struct {
	s *Store
}

// Meeting returns the meeting view.
func (s *Store) Meeting() MeetingView {
	return MeetingView{s: s}
}

// Snapshot returns a copy of the meeting-level state.
func (v MeetingView) Snapshot() Meeting {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	m := Meeting{
		MeetID:           v.s.meeting.meetID,
		Title:            v.s.meeting.title,
		Token:            v.s.meeting.token,
		MediaServer:      v.s.meeting.mediaServer,
		ActivePanel:      v.s.meeting.activePanel,
		OfficeFile:       v.s.meeting.officeFile,
		VideoPlayer:      v.s.meeting.videoPlayer,
		DesktopStreaming: v.s.meeting.desktopStreaming,
		Recorder:         v.s.meeting.recorder,
		ClientConfig:     v.s.meeting.clientConfig,
	}
	if v.s.meeting.permission != nil {
		perm := *v.s.meeting.permission
		m.Permission = &perm
	}
	return m
}

// Files returns the shared-file list sorted by id.
func (v MeetingView) Files() []wire.FileInfo {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	files := lo.Values(v.s.meeting.files)
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files
}

// SetActivePanel switches the presented panel.
func (v MeetingView) SetActivePanel(panel wire.ActivePanel) {
	v.s.mu.Lock()
	v.s.meeting.activePanel = panel
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeMeeting})
}

// SetTitle sets the meeting title.
func (v MeetingView) SetTitle(title string) {
	v.s.mu.Lock()
	v.s.meeting.title = title
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeMeeting})
}

// SetMeetID sets the meeting identifier. Local chat messages authored
// afterwards carry it.
func (v MeetingView) SetMeetID(meetID int64) {
	v.s.mu.Lock()
	v.s.meeting.meetID = meetID
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeMeeting})
}

// SetToken sets the media token for the meeting.
func (v MeetingView) SetToken(token string) {
	v.s.mu.Lock()
	v.s.meeting.token = token
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeMeeting})
}

// SetMediaServer sets the media server address.
func (v MeetingView) SetMediaServer(addr string) {
	v.s.mu.Lock()
	v.s.meeting.mediaServer = addr
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeMeeting})
}

// AddFile records a shared file.
func (v MeetingView) AddFile(f wire.FileInfo) {
	v.s.mu.Lock()
	v.s.meeting.files[f.ID] = f
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeMeeting})
}

// RemoveFile drops a shared file.
func (v MeetingView) RemoveFile(id int64) {
	v.s.mu.Lock()
	delete(v.s.meeting.files, id)
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeMeeting})
}
