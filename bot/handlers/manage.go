package handlers

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/telegram/callbacks"
	"github.com/sotlfg/lfgbot/core/telegram/helpers"
	"github.com/sotlfg/lfgbot/core/telegram/netutil"
)

// Manage lists the user's published listings with refresh and delete
// controls attached to each.
func (d *Deps) Manage(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID
	d.States.Clear(userID)

	items, err := d.Svc.ActiveApprovedByUser(ctx, userID)
	if err != nil {
		return helpers.SendText(c,
			"Произошла ошибка при получении списка объявлений. Пожалуйста, попробуйте через несколько минут.")
	}
	if len(items) == 0 {
		return helpers.SendText(c,
			"У вас пока нет активных объявлений. Используйте команду /create чтобы создать новое!")
	}

	for i := range items {
		l := &items[i]
		text := listing.FormatListing(l)
		markup := ManageMarkup(l.ID)
		err := c.Send(text, &tele.SendOptions{ParseMode: tele.ModeMarkdownV2}, markup)
		if netutil.BadRequestContains(err, "can't parse entities") {
			// A stray entity should not hide the listing from its owner.
			err = c.Send(text, markup)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// RefreshListing re-publishes a listing so it reappears at the bottom of
// the channel.
func (d *Deps) RefreshListing(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return helpers.SendText(c, "❌ Объявление не найдено")
	}

	switch err := d.Svc.Refresh(ctx, id, c.Sender().ID); {
	case err == nil:
		return helpers.SendText(c, "✅ Объявление обновлено!")
	case errors.Is(err, listing.ErrMessageMissing):
		return helpers.SendText(c, "❌ Сообщение не найдено в канале")
	case errors.Is(err, listing.ErrNotFound):
		return helpers.SendText(c, "❌ Объявление не найдено")
	default:
		return helpers.SendText(c, "❌ Не удалось обновить объявление")
	}
}

// DeleteListing deactivates a listing and removes its channel post.
func (d *Deps) DeleteListing(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return helpers.SendText(c, "Объявление не найдено или уже было удалено.")
	}

	switch err := d.Svc.Delete(ctx, id, c.Sender().ID); {
	case err == nil:
		// The management card is now stale; drop it best-effort.
		_ = c.Delete()
		return helpers.SendText(c, "✅ Объявление удалено!")
	case errors.Is(err, listing.ErrNotFound):
		return helpers.SendText(c, "Объявление не найдено или уже было удалено.")
	default:
		return helpers.SendText(c, "Произошла ошибка при выполнении действия. Пожалуйста, попробуйте позже.")
	}
}
