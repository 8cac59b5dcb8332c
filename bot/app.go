// Package bot assembles the looking-for-group bot: configuration, storage,
// the listing service and every Telegram-facing surface.
package bot

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/bot/handlers"
	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/bootstrap"
	coretelegram "github.com/sotlfg/lfgbot/core/telegram"
	"github.com/sotlfg/lfgbot/core/telegram/commands"
	"github.com/sotlfg/lfgbot/core/telegram/helpers"
	"github.com/sotlfg/lfgbot/core/telegram/middleware"
	"github.com/sotlfg/lfgbot/core/telegram/router"
	"github.com/sotlfg/lfgbot/core/telegram/state"
	"github.com/sotlfg/lfgbot/core/telegram/ui"
)

// App holds the assembled application.
type App struct {
	cfg    *Config
	db     *sqlx.DB
	store  *listing.SQLStore
	svc    *listing.Service
	policy *Policy
	states state.Manager
	msgr   *channelMessenger
	admins *adminChecker
	expiry *expiryJob

	modules bootstrap.Modules
}

// NewApp bootstraps infrastructure and wires the domain together.
func NewApp(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := listing.NewSQLStore(res.DB)
	policy := NewPolicy(cfg.Moderation.Default)
	msgr := NewMessenger()
	svc := listing.NewService(store, msgr, policy, listing.Channels{
		Listings:   cfg.Channels.Listings,
		Moderation: cfg.Channels.Moderation,
	})

	app := &App{
		cfg:    cfg,
		db:     res.DB,
		store:  store,
		svc:    svc,
		policy: policy,
		states: state.NewMemoryManager(),
		msgr:   msgr,
		admins: NewAdminChecker(cfg.Channels, cfg.AdminIDs),
		expiry: newExpiryJob(svc),
	}

	profile := cfg.Core.Logging.Profile
	if strings.EqualFold(profile, "debug") || strings.EqualFold(profile, "dev") {
		app.modules.Seeders = append(app.modules.Seeders, DemoSeeder())
	}
	return app, nil
}

func rejectAdmin(c tele.Context) error {
	return helpers.SendText(c, "У вас нет прав для использования этой команды.")
}

// TelegramRunOptions wires registries, middlewares and routes for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	d := &handlers.Deps{
		Svc:    a.svc,
		States: a.states,
		Policy: a.policy,
		Admins: a.admins,
	}
	handlers.RegisterFormSteps(d)

	reg.RegisterCommand("/start", commands.Command{
		Handler:     d.Start,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/create", commands.Command{
		Handler:     d.StartCreate,
		Description: "Создать объявление",
		Aliases:     []string{handlers.MenuCreate},
	})
	reg.RegisterCommand("/manage", commands.Command{
		Handler:     d.Manage,
		Description: "Мои объявления",
		Aliases:     []string{handlers.MenuManage},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     d.Cancel,
		Description: "Отменить текущее действие",
		Aliases:     []string{handlers.MenuCancel},
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     d.AdminPanel,
		Description: "Панель администратора",
		AdminOnly:   true,
		Hidden:      true,
	})

	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		Checker:  a.admins,
		OnReject: rejectAdmin,
	})
	cbs := map[string]tele.HandlerFunc{
		handlers.CallbackRefresh:         d.RefreshListing,
		handlers.CallbackDelete:          d.DeleteListing,
		handlers.CallbackContactTelegram: d.ContactTelegram,
		handlers.CallbackContactDiscord:  d.ContactDiscord,
		handlers.CallbackFormCancel:      d.Cancel,
		handlers.CallbackModApprove:      adminOnly(d.ApproveListing),
		handlers.CallbackModDecline:      adminOnly(d.DeclineListing),
		handlers.CallbackAdminModeAuto:   adminOnly(d.SetModerationMode),
		handlers.CallbackAdminModeManual: adminOnly(d.SetModerationMode),
		handlers.CallbackAdminClearAll:   adminOnly(d.ClearAllListings),
	}
	for key, h := range cbs {
		if err := reg.RegisterCallback(key, h); err != nil {
			return coretelegram.RunOptions{}, err
		}
	}
	var fallbacks ui.FallbackProvider = d
	reg.SetCallbackNotFound(fallbacks.UnknownCallback())

	mws := coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil)
	mws = append(mws, coretelegram.Middleware{
		Name: "fsm_session",
		Use:  state.WithSession(a.states),
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminChecker:  a.admins,
		OnAdminReject: rejectAdmin,
	})
	routes = append(routes, router.TextRoutes(a.states, reg, router.TextOptions{
		UnknownText: fallbacks.UnknownText(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.msgr.Bind(rt.Bot)
			a.admins.Bind(rt.Bot)
			if err := a.modules.RunSeeders(ctx, a.store); err != nil {
				return err
			}
			return a.expiry.Start(ctx, a.cfg.Expiry.Schedule)
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.expiry.Stop()
			return a.db.Close()
		},
	}, nil
}
