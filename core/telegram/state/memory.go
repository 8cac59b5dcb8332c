package state

import (
	"sync"
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/core/logger"
	tghelpers "github.com/sotlfg/lfgbot/core/telegram/helpers"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	now      func() time.Time
}

const sweepInterval = time.Minute

// NewMemoryManager constructs an in-memory Manager implementation. A
// background sweep drops expired sessions so abandoned conversations do
// not have to wait for the user's next message to be discarded.
func NewMemoryManager() Manager {
	m := &memoryManager{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
	go m.janitor()
	return m
}

func (m *memoryManager) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		m.sweepExpired()
	}
}

// sweepExpired removes every session past its deadline and reports how
// many were dropped. Sessions without a TTL are left alone.
func (m *memoryManager) sweepExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, sess := range m.sessions {
		if sess.TTL > 0 && now.After(sess.Deadline) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Begin opens a fresh session with the given idle TTL, replacing any existing one.
func (m *memoryManager) Begin(userID int64, st State, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := &Session{
		State:    st,
		TempData: make(map[string]interface{}),
		TTL:      ttl,
	}
	if ttl > 0 {
		sess.Deadline = m.now().Add(ttl)
	}
	m.sessions[userID] = sess
}

// session returns the live session for a user, expiring it first if its
// deadline has passed. Callers must hold the write lock.
func (m *memoryManager) session(userID int64) (*Session, bool) {
	sess, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	if sess.TTL > 0 && m.now().After(sess.Deadline) {
		delete(m.sessions, userID)
		return nil, false
	}
	return sess, true
}

func (m *memoryManager) touch(sess *Session) {
	if sess.TTL > 0 {
		sess.Deadline = m.now().Add(sess.TTL)
	}
}

// SetState sets the FSM state for the given user and refreshes the idle deadline.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.session(userID)
	if !ok {
		sess = &Session{TempData: make(map[string]interface{})}
		m.sessions[userID] = sess
	}
	sess.State = st
	m.touch(sess)
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.session(userID); ok {
		return sess.State
	}
	return StateIdle
}

// HasState checks if a user has an active state other than idle.
func (m *memoryManager) HasState(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.session(userID)
	return ok && sess.State != StateIdle
}

// ClearState resets the FSM state to idle for a user without removing scratch data.
func (m *memoryManager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.session(userID); ok {
		sess.State = StateIdle
	}
}

// SetTemp stores a scratch key/value pair and refreshes the idle deadline.
func (m *memoryManager) SetTemp(userID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.session(userID)
	if !ok {
		sess = &Session{TempData: make(map[string]interface{})}
		m.sessions[userID] = sess
	}
	sess.TempData[key] = value
	m.touch(sess)
}

// GetTemp retrieves a scratch value by key for the given user session.
func (m *memoryManager) GetTemp(userID int64, key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.session(userID)
	if !ok {
		return nil, false
	}
	val, ok := sess.TempData[key]
	return val, ok
}

// GetTempInt64 retrieves a scratch value by key and asserts it as int64.
func (m *memoryManager) GetTempInt64(userID int64, key string) (int64, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return 0, false
	}
	v, ok := val.(int64)
	if !ok {
		return 0, false
	}
	return v, true
}

// GetTempString retrieves a scratch value by key and asserts it as string.
func (m *memoryManager) GetTempString(userID int64, key string) (string, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return "", false
	}
	v, ok := val.(string)
	if !ok {
		return "", false
	}
	return v, true
}

// ClearTemp removes a scratch key/value pair for the given user session.
func (m *memoryManager) ClearTemp(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.session(userID); ok {
		delete(sess.TempData, key)
	}
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.HasState(userID)
}

// ManagerHandler executes the handler function registered for the user's current state, if any.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	if handler, ok := fsmHandlers[current]; ok {
		return handler(c)
	}
	return nil
}
