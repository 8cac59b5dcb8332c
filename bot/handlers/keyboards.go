package handlers

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/core/telegram/keyboard"
)

// MainMenu is the persistent reply keyboard shown after /start.
func MainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{MenuCreate, MenuManage, MenuCancel},
	)
}

// ManageMarkup attaches refresh and delete controls to a published listing.
func ManageMarkup(id int64) *tele.ReplyMarkup {
	payload := strconv.FormatInt(id, 10)
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "🔄 Обновить", Unique: CallbackRefresh, Data: payload},
		{Text: "🗑 Удалить", Unique: CallbackDelete, Data: payload},
	})
}

// ModerationMarkup attaches approve and decline controls to a moderation card.
func ModerationMarkup(id int64) *tele.ReplyMarkup {
	payload := strconv.FormatInt(id, 10)
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "✅ Принять", Unique: CallbackModApprove, Data: payload},
		{Text: "❌ Отклонить", Unique: CallbackModDecline, Data: payload},
	})
}

// AdminMarkup renders the settings panel controls.
func AdminMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "Автомодерация", Unique: CallbackAdminModeAuto, Data: "auto"},
			{Text: "Ручная модерация", Unique: CallbackAdminModeManual, Data: "manual"},
		},
		[]keyboard.InlineBtn{
			{Text: "🗑 Очистить все объявления", Unique: CallbackAdminClearAll, Data: "all"},
		},
	)
}

// ContactTypeMarkup offers the two supported contact kinds during the form.
func ContactTypeMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Telegram", Unique: CallbackContactTelegram, Data: "telegram"},
		{Text: "Discord", Unique: CallbackContactDiscord, Data: "discord"},
	})
}

// optionKeyboard lays out enum values two per row with a cancel entry.
func optionKeyboard(values []string) *tele.ReplyMarkup {
	labels := append(append([]string{}, values...), MenuCancel)
	return keyboard.ReplyOptions(labels, 2)
}
