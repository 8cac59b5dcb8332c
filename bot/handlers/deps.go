package handlers

import (
	"time"

	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/telegram/middleware"
	"github.com/sotlfg/lfgbot/core/telegram/state"
)

// PolicySwitch is the mutable side of the moderation policy, used by the
// admin panel. Listing creation only reads it, through the service.
type PolicySwitch interface {
	Mode() string
	SetMode(mode string)
}

// Session idle timeouts. A form abandoned mid-step quietly expires.
const (
	FormTTL  = 15 * time.Minute
	AdminTTL = 5 * time.Minute
)

// Deps carries everything the handlers need. One value is shared by all
// registered commands, callbacks and FSM steps.
type Deps struct {
	Svc    *listing.Service
	States state.Manager
	Policy PolicySwitch
	Admins middleware.AdminChecker
}
