package dialog

import (
	"sync"

	"github.com/a7motors/dealerbot/core/logger"
	"log/slog"
)

// Manager orchestrates user sessions and conversation step transitions.
// One session per user; a new Start replaces whatever was in progress.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	steps    map[State]StepFunc
}

// NewManager constructs an empty in-memory Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		steps:    make(map[State]StepFunc),
	}
}

// RegisterStep associates a state with its step handler. Registration happens
// during wiring, before updates arrive.
func (m *Manager) RegisterStep(st State, fn StepFunc) {
	if st == StateIdle || fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.steps[st]; exists {
		logger.Warn(logger.Background(), "dialog", "step.duplicate",
			slog.String("state", string(st)),
		)
		return
	}
	m.steps[st] = fn
}

// Start begins a conversation for the user at the given state, discarding any
// previous session.
func (m *Manager) Start(userID int64, username string, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &Session{
		UserID:   userID,
		Username: username,
		State:    st,
		TempData: make(map[string]interface{}),
	}
}

// WithSession runs fn against the user's live session under the manager
// lock. Used to seed scratch data right after Start.
func (m *Manager) WithSession(userID int64, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		fn(sess)
	}
}

// Cancel drops the user's session, if any. It reports whether a conversation
// was actually in progress.
func (m *Manager) Cancel(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[userID]
	delete(m.sessions, userID)
	return ok
}

// State returns the user's current state, or StateIdle when no conversation
// is active.
func (m *Manager) State(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// InProgress reports whether the user has an active conversation.
func (m *Manager) InProgress(userID int64) bool {
	return m.State(userID) != StateIdle
}

// Feed runs the step registered for the user's current state against the
// input and applies the resulting transition. It returns the replies the
// step produced. Input with no matching session or step yields no replies.
func (m *Manager) Feed(userID int64, in Input) []Reply {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	current := sess.State
	fn := m.steps[current]
	m.mu.Unlock()

	if fn == nil {
		logger.Warn(logger.Background(), "dialog", "step.missing",
			slog.Int64("user_id", userID),
			slog.String("state", string(current)),
		)
		m.Cancel(userID)
		return nil
	}

	step := fn(sess, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	// The session may have been cancelled or restarted while the step ran.
	if live, ok := m.sessions[userID]; !ok || live != sess {
		return step.Replies
	}
	if step.Done {
		delete(m.sessions, userID)
	} else if step.Next != "" {
		sess.State = step.Next
	}

	logger.Debug(logger.Background(), "dialog", "step",
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
		slog.String("outcome", stepOutcome(current, step)),
	)
	return step.Replies
}

func stepOutcome(current State, step Step) string {
	switch {
	case step.Done:
		return "done"
	case step.Next == "" || step.Next == current:
		return "retry"
	default:
		return "advance"
	}
}
