package handlers

import (
	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/core/telegram/helpers"
)

// Start greets the user and shows the main menu. Any conversation in
// progress is dropped.
func (d *Deps) Start(c tele.Context) error {
	userID := c.Sender().ID
	d.States.Clear(userID)

	text := "👋 Привет! Я бот для поиска команды.\n\n" +
		"Используйте кнопки меню ниже:"
	if d.Admins != nil && d.Admins.IsAdmin(userID) {
		text += "\n/admin - Панель администратора"
	}
	return helpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: MainMenu()})
}

// Unknown answers free text that matches no command and no conversation.
func (d *Deps) Unknown(c tele.Context) error {
	return helpers.SendText(c,
		"Я вас не понял. Используйте кнопки меню или команду /start.",
		&tele.SendOptions{ReplyMarkup: MainMenu()})
}

// UnknownText satisfies ui.FallbackProvider.
func (d *Deps) UnknownText() tele.HandlerFunc {
	return d.Unknown
}

// UnknownCallback answers presses on buttons that are no longer wired.
func (d *Deps) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendText(c, "Эта кнопка больше не активна. Используйте /start.")
	}
}
