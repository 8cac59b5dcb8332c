package state

import tele "gopkg.in/telebot.v4"

const stateKey = "fsm_state"

// WithSession injects the sender's current FSM state into the handler context.
// Reading the state also expires idle sessions past their deadline.
func WithSession(mgr Manager) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if sender := c.Sender(); sender != nil {
				c.Set(stateKey, mgr.GetState(sender.ID))
			}
			return next(c)
		}
	}
}

// StateFrom returns the FSM state stored by WithSession, or StateIdle.
func StateFrom(c tele.Context) State {
	if v := c.Get(stateKey); v != nil {
		if st, ok := v.(State); ok {
			return st
		}
	}
	return StateIdle
}
