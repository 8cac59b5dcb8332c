package handlers

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/telegram/callbacks"
	"github.com/sotlfg/lfgbot/core/telegram/helpers"
	"github.com/sotlfg/lfgbot/core/telegram/state"
)

// StateAdminPanel keeps the settings panel session alive while an admin
// is clicking through it.
const StateAdminPanel state.State = "admin:panel"

func modeLabel(mode string) string {
	if mode == listing.ModerationAuto {
		return "Автоматический"
	}
	return "Ручной"
}

// AdminPanel shows the moderation settings. Admin access is enforced by
// the command router.
func (d *Deps) AdminPanel(c tele.Context) error {
	userID := c.Sender().ID
	d.States.Begin(userID, StateAdminPanel, AdminTTL)

	text := fmt.Sprintf(
		"🛠 Панель администратора\n\n"+
			"Текущий режим модерации: %s\n\n"+
			"Выберите режим модерации объявлений:",
		modeLabel(d.Policy.Mode()))
	return helpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: AdminMarkup()})
}

// handleAdminPanelState swallows stray text while the panel is open.
func (d *Deps) handleAdminPanelState(c tele.Context) error {
	if cancelRequested(c) {
		return d.Cancel(c)
	}
	return helpers.SendText(c, "Используйте кнопки панели администратора или /admin.")
}

// SetModerationMode switches the policy to the mode carried in the
// callback payload.
func (d *Deps) SetModerationMode(c tele.Context) error {
	mode := callbacks.CallbackPayload(c)
	if mode != listing.ModerationAuto && mode != listing.ModerationManual {
		return helpers.SendText(c, "Некорректный выбор режима модерации.")
	}

	d.Policy.SetMode(mode)
	d.States.Clear(c.Sender().ID)

	text := fmt.Sprintf(
		"✅ Настройки обновлены\n\n"+
			"Текущий режим модерации: %s\n\n"+
			"Используйте /admin для изменения настроек.",
		modeLabel(mode))
	return c.Edit(text)
}

// ClearAllListings wipes every listing and resets the ID sequence.
func (d *Deps) ClearAllListings(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	d.States.Clear(c.Sender().ID)

	if err := d.Svc.ClearAll(ctx); err != nil {
		return helpers.SendText(c, "Произошла ошибка при очистке объявлений. Попробуйте позже.")
	}
	return c.Edit(
		"✅ Все объявления успешно удалены.\n" +
			"Следующее созданное объявление будет иметь ID 1.\n\n" +
			"Используйте /admin для возврата в панель администратора.")
}
