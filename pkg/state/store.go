package state

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sunmobiir/meetsync/pkg/transport"
	"github.com/sunmobiir/meetsync/pkg/wire"
)

// Store errors.
var (
	ErrUnknownMessage     = errors.New("state: unknown message id")
	ErrUnknownParticipant = errors.New("state: unknown participant id")
	ErrUnknownQuestion    = errors.New("state: unknown question id")
	ErrBadOptionIndex     = errors.New("state: option index out of range")
)

// ChangeKind identifies which slice of session state changed.
type ChangeKind uint8

const (
	ChangeRoster ChangeKind = iota
	ChangeChat
	ChangeMeeting
	ChangeQuiz
	ChangeConnection
)

// String returns the string representation of the change kind.
func (ck ChangeKind) String() string {
	switch ck {
	case ChangeRoster:
		return "Roster"
	case ChangeChat:
		return "Chat"
	case ChangeMeeting:
		return "Meeting"
	case ChangeQuiz:
		return "Quiz"
	case ChangeConnection:
		return "Connection"
	default:
		return "Unknown"
	}
}

// Change is delivered to subscribers after a mutation commits.
type Change struct {
	Kind ChangeKind
}

// Publisher is the pluggable upstream publish hook for local mutations.
// Calls are fire-and-forget: a failed publish never rolls back local state.
type Publisher interface {
	PublishChat(msg wire.ChatMessage) error
}

// meetingState is the meeting-level slice of the aggregate.
type meetingState struct {
	meetID      int64
	title       string
	token       string
	mediaServer string
	activePanel wire.ActivePanel
	files       map[int64]wire.FileInfo

	officeFile       []byte
	videoPlayer      []byte
	desktopStreaming []byte
	recorder         []byte
	clientConfig     []byte

	permission *wire.Permission
}

// Store is the canonical session state container. All mutation is
// serialized under mu; subscriber callbacks run outside the lock.
type Store struct {
	mu sync.RWMutex

	roster  []wire.Participant
	current *wire.Participant

	currentUserID   string
	currentUserName string
	messages        []wire.ChatMessage

	meeting meetingState

	questions []wire.QuizQuestion
	responses map[string]int

	conn transport.State

	subs      map[uint64]func(Change)
	nextSubID uint64

	publisher Publisher
	logger    *slog.Logger

	// now is replaceable for tests.
	now func() time.Time
}

// New creates an empty store. The logger may be nil; slog.Default() is
// used in that case.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		meeting:   meetingState{files: map[int64]wire.FileInfo{}},
		responses: map[string]int{},
		subs:      map[uint64]func(Change){},
		logger:    logger,
		now:       time.Now,
	}
}

// SetPublisher installs the upstream publish hook. Pass nil for
// local-only operation.
func (s *Store) SetPublisher(p Publisher) {
	s.mu.Lock()
	s.publisher = p
	s.mu.Unlock()
}

// Subscribe registers fn to be called after every committed mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// notify delivers changes to all subscribers, outside the store lock.
func (s *Store) notify(changes ...Change) {
	s.mu.RLock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, change := range changes {
		for _, fn := range fns {
			fn(change)
		}
	}
}

// publishChat hands a locally created or mutated message to the publisher
// hook, if one is installed. Failures are logged, never propagated.
func (s *Store) publishChat(msg wire.ChatMessage) {
	s.mu.RLock()
	p := s.publisher
	s.mu.RUnlock()

	if p == nil {
		return
	}
	if err := p.PublishChat(msg); err != nil {
		s.logger.Warn("chat publish failed", "message_id", msg.ID, "error", err)
	}
}

// SetConnectionState records the transport state and notifies subscribers
// on an actual transition.
func (s *Store) SetConnectionState(st transport.State) {
	s.mu.Lock()
	changed := s.conn != st
	s.conn = st
	s.mu.Unlock()

	if changed {
		s.notify(Change{Kind: ChangeConnection})
	}
}

// ConnectionState returns the last recorded transport state.
func (s *Store) ConnectionState() transport.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}
