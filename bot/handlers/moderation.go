package handlers

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/telegram/callbacks"
	"github.com/sotlfg/lfgbot/core/telegram/helpers"
)

// ApproveListing publishes a pending listing. Admin access is enforced by
// the callback router.
func (d *Deps) ApproveListing(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return helpers.SendText(c, "Объявление не найдено!")
	}
	return d.finishModeration(c, d.Svc.Approve(ctx, id))
}

// DeclineListing rejects a pending listing and notifies its owner.
func (d *Deps) DeclineListing(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return helpers.SendText(c, "Объявление не найдено!")
	}
	return d.finishModeration(c, d.Svc.Decline(ctx, id))
}

func (d *Deps) finishModeration(c tele.Context, err error) error {
	switch {
	case err == nil:
		// Strip the card's buttons so a second click cannot race.
		_, _ = c.Bot().EditReplyMarkup(c.Message(), nil)
		return nil
	case errors.Is(err, listing.ErrAlreadyDecided):
		return helpers.SendText(c, "Это объявление уже обработано")
	case errors.Is(err, listing.ErrNotFound):
		return helpers.SendText(c, "Объявление не найдено!")
	default:
		return helpers.SendText(c, "Ошибка при обработке действия. Попробуйте позже.")
	}
}
