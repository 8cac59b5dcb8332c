package state

import (
	tele "gopkg.in/telebot.v4"
)

// HandlerFunc is the function signature used by FSM state handlers.
type HandlerFunc func(c tele.Context) error

// fsmHandlers maps FSM states to their handler functions.
// Registration happens once during application wiring, before the bot starts.
var fsmHandlers = map[State]HandlerFunc{}

// RegisterHandler binds a handler function to an FSM state.
func RegisterHandler(st State, handler HandlerFunc) {
	fsmHandlers[st] = handler
}
