package middleware

import tele "gopkg.in/telebot.v4"

// AdminChecker answers whether a user may use admin-only surfaces.
type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	Checker  AdminChecker
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only admin users can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.Checker != nil && !opts.Checker.IsAdmin(c.Sender().ID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
