package dialog

import tele "gopkg.in/telebot.v4"

// State identifies a conversation step.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// InputKind discriminates what a user supplied on a step.
type InputKind string

const (
	// InputText is a free-form text message.
	InputText InputKind = "text"
	// InputChoice is a keyboard or callback selection.
	InputChoice InputKind = "choice"
	// InputPhoto is an uploaded photo.
	InputPhoto InputKind = "photo"
)

// Photo is an uploaded photo that a step may persist. The transport layer
// supplies the implementation; tests supply fakes.
type Photo interface {
	// Store writes the photo bytes to the given filesystem path.
	Store(path string) error
	// Ext reports the file extension including the dot, e.g. ".jpg".
	Ext() string
}

// Input is one piece of user input fed into an active conversation.
type Input struct {
	Kind  InputKind
	Text  string
	Photo Photo
}

// Reply is one outgoing message produced by a step.
type Reply struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// Step is the outcome of feeding an input into a conversation.
type Step struct {
	Replies []Reply
	Next    State
	// Done ends the conversation; Next is ignored.
	Done bool
}

// StepFunc handles one conversation step. Implementations validate the
// input, mutate the session scratch data and decide the next state. A
// mismatched input should re-prompt by returning the current state again.
type StepFunc func(s *Session, in Input) Step

// Session stores conversation state and scratch data for a user.
type Session struct {
	UserID   int64
	Username string
	State    State
	TempData map[string]interface{}
}

// SetTemp stores a scratch value on the session.
func (s *Session) SetTemp(key string, value interface{}) {
	if s.TempData == nil {
		s.TempData = make(map[string]interface{})
	}
	s.TempData[key] = value
}

// Temp retrieves a scratch value by key.
func (s *Session) Temp(key string) (interface{}, bool) {
	val, ok := s.TempData[key]
	return val, ok
}

// TempString retrieves a scratch value by key and asserts it as string.
func (s *Session) TempString(key string) (string, bool) {
	val, ok := s.TempData[key]
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// TempInt64 retrieves a scratch value by key and asserts it as int64.
func (s *Session) TempInt64(key string) (int64, bool) {
	val, ok := s.TempData[key]
	if !ok {
		return 0, false
	}
	v, ok := val.(int64)
	return v, ok
}
