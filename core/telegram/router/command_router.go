package router

import (
	"github.com/sotlfg/lfgbot/core/logger"
	tg "github.com/sotlfg/lfgbot/core/telegram"
	"github.com/sotlfg/lfgbot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminChecker  middleware.AdminChecker
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOpts := middleware.AdminOptions{
		Checker:  opts.AdminChecker,
		OnReject: opts.OnAdminReject,
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := def.Handler
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
