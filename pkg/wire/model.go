package wire

// Role is a participant's role in the meeting.
type Role uint8

const (
	RoleParticipant Role = 0
	RoleHost        Role = 1
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case RoleHost:
		return "Host"
	case RoleParticipant:
		return "Participant"
	default:
		return "Unknown"
	}
}

// Permission is the fixed capability set scoped to one participant.
// It is mutated only by whole-object replacement.
type Permission struct {
	Audio  bool
	Video  bool
	Screen bool
	Board  bool
	File   bool
	Chat   bool
	Player bool
	Office bool
}

// Permission bit positions within the wire bitmask.
const (
	permAudio uint16 = 1 << iota
	permVideo
	permScreen
	permBoard
	permFile
	permChat
	permPlayer
	permOffice
)

// Bits packs the permission into its wire bitmask.
func (p Permission) Bits() uint16 {
	var bits uint16
	if p.Audio {
		bits |= permAudio
	}
	if p.Video {
		bits |= permVideo
	}
	if p.Screen {
		bits |= permScreen
	}
	if p.Board {
		bits |= permBoard
	}
	if p.File {
		bits |= permFile
	}
	if p.Chat {
		bits |= permChat
	}
	if p.Player {
		bits |= permPlayer
	}
	if p.Office {
		bits |= permOffice
	}
	return bits
}

// PermissionFromBits unpacks a wire bitmask into a Permission.
func PermissionFromBits(bits uint16) Permission {
	return Permission{
		Audio:  bits&permAudio != 0,
		Video:  bits&permVideo != 0,
		Screen: bits&permScreen != 0,
		Board:  bits&permBoard != 0,
		File:   bits&permFile != 0,
		Chat:   bits&permChat != 0,
		Player: bits&permPlayer != 0,
		Office: bits&permOffice != 0,
	}
}

// Participant is one roster entry. Identity key is ID, unique within a
// meeting.
type Participant struct {
	ID         string
	Name       string
	Role       Role
	Permission Permission
	RaiseHand  bool
	Hidden     bool
	Recorder   bool
	RecordType string
}

// ChatMessage is one entry in the append-only chat log. Messages are never
// hard-removed; Deleted flags them out of the public view.
type ChatMessage struct {
	ID         string
	Text       string
	UserID     string
	UserName   string
	InsertTime int64 // Unix milliseconds
	MeetID     int64
	Deleted    bool
	Private    bool
	ToUserID   string
	Reply      bool
	ReplyID    string
	ReplyText  string
}

// QuestionType is the kind of quiz question.
type QuestionType uint8

const (
	QuestionMultipleChoice QuestionType = 0
	QuestionYesNo          QuestionType = 1
)

// String returns the string representation of the question type.
func (qt QuestionType) String() string {
	switch qt {
	case QuestionMultipleChoice:
		return "MultipleChoice"
	case QuestionYesNo:
		return "YesNo"
	default:
		return "Unknown"
	}
}

// QuizQuestion is one question with its ordered option list.
type QuizQuestion struct {
	ID           string
	Text         string
	Type         QuestionType
	Options      []string
	CorrectIndex int
}

// Quiz is the quiz model plus the per-user response map
// (question id → chosen option index).
type Quiz struct {
	Questions []QuizQuestion
	Responses map[string]int
}

// FileInfo is shared-file metadata. The core never touches file contents.
type FileInfo struct {
	ID   int64
	Name string
	Size int64
	URL  string
}

// ActivePanel selects which panel the meeting currently presents.
type ActivePanel uint8

const (
	PanelWhiteboard ActivePanel = 0
	PanelScreen     ActivePanel = 1
	PanelPlayer     ActivePanel = 2
	PanelOffice     ActivePanel = 3
	PanelFiles      ActivePanel = 4
)

// String returns the string representation of the active panel.
func (ap ActivePanel) String() string {
	switch ap {
	case PanelWhiteboard:
		return "Whiteboard"
	case PanelScreen:
		return "Screen"
	case PanelPlayer:
		return "Player"
	case PanelOffice:
		return "Office"
	case PanelFiles:
		return "Files"
	default:
		return "Unknown"
	}
}

// MeetStatus is the root snapshot pushed by the server: the single source
// of truth for one meeting. Optional sections are pointers (or nil byte
// slices for the opaque DTOs) guarded by a presence bitmap on the wire, so
// an absent section decodes to nil and the reconciler leaves current state
// untouched.
type MeetStatus struct {
	MeetID      int64
	MeetTitle   string
	Token       string
	MediaServer string
	ActivePanel ActivePanel

	Self       *Participant
	Permission *Permission

	Users        map[string]Participant
	Chats        map[string]ChatMessage
	PrivateChats map[string]ChatMessage
	Files        map[int64]FileInfo
	Quiz         *Quiz

	// Opaque DTOs the core passes through untouched.
	OfficeFile       []byte
	VideoPlayer      []byte
	DesktopStreaming []byte
	Recorder         []byte
	ClientConfig     []byte
}

// Presence bits for MeetStatus optional sections.
const (
	presSelf uint16 = 1 << iota
	presPermission
	presQuiz
	presOfficeFile
	presVideoPlayer
	presDesktopStreaming
	presRecorder
	presClientConfig
)

func encodeParticipantTo(e *Encoder, p *Participant) {
	e.WriteString(p.ID)
	e.WriteString(p.Name)
	e.WriteByte(byte(p.Role))
	e.WriteUint16(p.Permission.Bits())
	e.WriteBool(p.RaiseHand)
	e.WriteBool(p.Hidden)
	e.WriteBool(p.Recorder)
	e.WriteString(p.RecordType)
}

func decodeParticipantFrom(d *Decoder) (Participant, error) {
	var p Participant
	var err error

	if p.ID, err = d.ReadString(); err != nil {
		return p, err
	}
	if p.Name, err = d.ReadString(); err != nil {
		return p, err
	}
	role, err := d.ReadByte()
	if err != nil {
		return p, err
	}
	p.Role = Role(role)

	bits, err := d.ReadUint16()
	if err != nil {
		return p, err
	}
	p.Permission = PermissionFromBits(bits)

	if p.RaiseHand, err = d.ReadBool(); err != nil {
		return p, err
	}
	if p.Hidden, err = d.ReadBool(); err != nil {
		return p, err
	}
	if p.Recorder, err = d.ReadBool(); err != nil {
		return p, err
	}
	if p.RecordType, err = d.ReadString(); err != nil {
		return p, err
	}
	return p, nil
}

func encodeChatMessageTo(e *Encoder, m *ChatMessage) {
	e.WriteString(m.ID)
	e.WriteString(m.Text)
	e.WriteString(m.UserID)
	e.WriteString(m.UserName)
	e.WriteInt64(m.InsertTime)
	e.WriteSvarint(m.MeetID)
	e.WriteBool(m.Deleted)
	e.WriteBool(m.Private)
	e.WriteString(m.ToUserID)
	e.WriteBool(m.Reply)
	e.WriteString(m.ReplyID)
	e.WriteString(m.ReplyText)
}

func decodeChatMessageFrom(d *Decoder) (ChatMessage, error) {
	var m ChatMessage
	var err error

	if m.ID, err = d.ReadString(); err != nil {
		return m, err
	}
	if m.Text, err = d.ReadString(); err != nil {
		return m, err
	}
	if m.UserID, err = d.ReadString(); err != nil {
		return m, err
	}
	if m.UserName, err = d.ReadString(); err != nil {
		return m, err
	}
	if m.InsertTime, err = d.ReadInt64(); err != nil {
		return m, err
	}
	if m.MeetID, err = d.ReadSvarint(); err != nil {
		return m, err
	}
	if m.Deleted, err = d.ReadBool(); err != nil {
		return m, err
	}
	if m.Private, err = d.ReadBool(); err != nil {
		return m, err
	}
	if m.ToUserID, err = d.ReadString(); err != nil {
		return m, err
	}
	if m.Reply, err = d.ReadBool(); err != nil {
		return m, err
	}
	if m.ReplyID, err = d.ReadString(); err != nil {
		return m, err
	}
	if m.ReplyText, err = d.ReadString(); err != nil {
		return m, err
	}
	return m, nil
}

func encodeQuizTo(e *Encoder, q *Quiz) {
	e.WriteUvarint(uint64(len(q.Questions)))
	for i := range q.Questions {
		qq := &q.Questions[i]
		e.WriteString(qq.ID)
		e.WriteString(qq.Text)
		e.WriteByte(byte(qq.Type))
		e.WriteUvarint(uint64(len(qq.Options)))
		for _, opt := range qq.Options {
			e.WriteString(opt)
		}
		e.WriteUvarint(uint64(qq.CorrectIndex))
	}

	e.WriteUvarint(uint64(len(q.Responses)))
	for id, idx := range q.Responses {
		e.WriteString(id)
		e.WriteUvarint(uint64(idx))
	}
}

func decodeQuizFrom(d *Decoder) (*Quiz, error) {
	q := &Quiz{}

	qCount, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if qCount > 0 {
		q.Questions = make([]QuizQuestion, 0, qCount)
	}
	for i := 0; i < qCount; i++ {
		var qq QuizQuestion
		if qq.ID, err = d.ReadString(); err != nil {
			return nil, err
		}
		if qq.Text, err = d.ReadString(); err != nil {
			return nil, err
		}
		qt, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		qq.Type = QuestionType(qt)

		optCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		if optCount > 0 {
			qq.Options = make([]string, 0, optCount)
		}
		for j := 0; j < optCount; j++ {
			opt, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			qq.Options = append(qq.Options, opt)
		}

		correct, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		qq.CorrectIndex = int(correct)
		q.Questions = append(q.Questions, qq)
	}

	rCount, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if rCount > 0 {
		q.Responses = make(map[string]int, rCount)
	}
	for i := 0; i < rCount; i++ {
		id, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		idx, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		q.Responses[id] = int(idx)
	}
	return q, nil
}

func encodeFileInfoTo(e *Encoder, f *FileInfo) {
	e.WriteSvarint(f.ID)
	e.WriteString(f.Name)
	e.WriteSvarint(f.Size)
	e.WriteString(f.URL)
}

func decodeFileInfoFrom(d *Decoder) (FileInfo, error) {
	var f FileInfo
	var err error

	if f.ID, err = d.ReadSvarint(); err != nil {
		return f, err
	}
	if f.Name, err = d.ReadString(); err != nil {
		return f, err
	}
	if f.Size, err = d.ReadSvarint(); err != nil {
		return f, err
	}
	if f.URL, err = d.ReadString(); err != nil {
		return f, err
	}
	return f, nil
}

func encodeChatMapTo(e *Encoder, m map[string]ChatMessage) {
	e.WriteUvarint(uint64(len(m)))
	for key := range m {
		msg := m[key]
		e.WriteString(key)
		encodeChatMessageTo(e, &msg)
	}
}

func decodeChatMapFrom(d *Decoder) (map[string]ChatMessage, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	m := make(map[string]ChatMessage, count)
	for i := 0; i < count; i++ {
		key, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		msg, err := decodeChatMessageFrom(d)
		if err != nil {
			return nil, err
		}
		m[key] = msg
	}
	return m, nil
}

func encodeMeetStatusTo(e *Encoder, ms *MeetStatus) {
	e.WriteSvarint(ms.MeetID)
	e.WriteString(ms.MeetTitle)
	e.WriteString(ms.Token)
	e.WriteString(ms.MediaServer)
	e.WriteByte(byte(ms.ActivePanel))

	var pres uint16
	if ms.Self != nil {
		pres |= presSelf
	}
	if ms.Permission != nil {
		pres |= presPermission
	}
	if ms.Quiz != nil {
		pres |= presQuiz
	}
	if ms.OfficeFile != nil {
		pres |= presOfficeFile
	}
	if ms.VideoPlayer != nil {
		pres |= presVideoPlayer
	}
	if ms.DesktopStreaming != nil {
		pres |= presDesktopStreaming
	}
	if ms.Recorder != nil {
		pres |= presRecorder
	}
	if ms.ClientConfig != nil {
		pres |= presClientConfig
	}
	e.WriteUint16(pres)

	if ms.Self != nil {
		encodeParticipantTo(e, ms.Self)
	}
	if ms.Permission != nil {
		e.WriteUint16(ms.Permission.Bits())
	}

	e.WriteUvarint(uint64(len(ms.Users)))
	for key := range ms.Users {
		p := ms.Users[key]
		e.WriteString(key)
		encodeParticipantTo(e, &p)
	}

	encodeChatMapTo(e, ms.Chats)
	encodeChatMapTo(e, ms.PrivateChats)

	e.WriteUvarint(uint64(len(ms.Files)))
	for key := range ms.Files {
		f := ms.Files[key]
		e.WriteSvarint(key)
		encodeFileInfoTo(e, &f)
	}

	if ms.Quiz != nil {
		encodeQuizTo(e, ms.Quiz)
	}

	if ms.OfficeFile != nil {
		e.WriteLenBytes(ms.OfficeFile)
	}
	if ms.VideoPlayer != nil {
		e.WriteLenBytes(ms.VideoPlayer)
	}
	if ms.DesktopStreaming != nil {
		e.WriteLenBytes(ms.DesktopStreaming)
	}
	if ms.Recorder != nil {
		e.WriteLenBytes(ms.Recorder)
	}
	if ms.ClientConfig != nil {
		e.WriteLenBytes(ms.ClientConfig)
	}
}

func decodeMeetStatusFrom(d *Decoder) (*MeetStatus, error) {
	ms := &MeetStatus{}
	var err error

	if ms.MeetID, err = d.ReadSvarint(); err != nil {
		return nil, err
	}
	if ms.MeetTitle, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ms.Token, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ms.MediaServer, err = d.ReadString(); err != nil {
		return nil, err
	}
	panel, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ms.ActivePanel = ActivePanel(panel)

	pres, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}

	if pres&presSelf != 0 {
		self, err := decodeParticipantFrom(d)
		if err != nil {
			return nil, err
		}
		ms.Self = &self
	}
	if pres&presPermission != 0 {
		bits, err := d.ReadUint16()
		if err != nil {
			return nil, err
		}
		perm := PermissionFromBits(bits)
		ms.Permission = &perm
	}

	userCount, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if userCount > 0 {
		ms.Users = make(map[string]Participant, userCount)
	}
	for i := 0; i < userCount; i++ {
		key, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		p, err := decodeParticipantFrom(d)
		if err != nil {
			return nil, err
		}
		ms.Users[key] = p
	}

	if ms.Chats, err = decodeChatMapFrom(d); err != nil {
		return nil, err
	}
	if ms.PrivateChats, err = decodeChatMapFrom(d); err != nil {
		return nil, err
	}

	fileCount, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if fileCount > 0 {
		ms.Files = make(map[int64]FileInfo, fileCount)
	}
	for i := 0; i < fileCount; i++ {
		key, err := d.ReadSvarint()
		if err != nil {
			return nil, err
		}
		f, err := decodeFileInfoFrom(d)
		if err != nil {
			return nil, err
		}
		ms.Files[key] = f
	}

	if pres&presQuiz != 0 {
		if ms.Quiz, err = decodeQuizFrom(d); err != nil {
			return nil, err
		}
	}

	if pres&presOfficeFile != 0 {
		if ms.OfficeFile, err = d.ReadLenBytes(); err != nil {
			return nil, err
		}
	}
	if pres&presVideoPlayer != 0 {
		if ms.VideoPlayer, err = d.ReadLenBytes(); err != nil {
			return nil, err
		}
	}
	if pres&presDesktopStreaming != 0 {
		if ms.DesktopStreaming, err = d.ReadLenBytes(); err != nil {
			return nil, err
		}
	}
	if pres&presRecorder != 0 {
		if ms.Recorder, err = d.ReadLenBytes(); err != nil {
			return nil, err
		}
	}
	if pres&presClientConfig != 0 {
		if ms.ClientConfig, err = d.ReadLenBytes(); err != nil {
			return nil, err
		}
	}

	return ms, nil
}
