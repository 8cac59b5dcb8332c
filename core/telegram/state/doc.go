// Package state provides a lightweight FSM/session manager for Telegram
// conversations. Sessions carry an idle deadline: a conversation begun with a
// TTL is discarded once the user stays silent past it, so abandoned forms
// never leave scratch data behind.
package state
