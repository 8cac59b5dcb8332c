package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and temporary data for a user.
// Deadline is the moment the session expires; each state transition or
// scratch write pushes it forward by the session TTL.
type Session struct {
	State    State
	TempData map[string]interface{}
	TTL      time.Duration
	Deadline time.Time
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	// Begin opens a conversation for the user with the given idle TTL and
	// initial state, discarding any previous session.
	Begin(userID int64, st State, ttl time.Duration)

	SetState(userID int64, st State)
	GetState(userID int64) State
	HasState(userID int64) bool
	ClearState(userID int64)

	SetTemp(userID int64, key string, value interface{})
	GetTemp(userID int64, key string) (interface{}, bool)
	GetTempInt64(userID int64, key string) (int64, bool)
	GetTempString(userID int64, key string) (string, bool)
	ClearTemp(userID int64, key string)

	// Clear removes the entire session, scratch data included.
	Clear(userID int64)

	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}
