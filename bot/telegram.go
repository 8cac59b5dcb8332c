package bot

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/bot/handlers"
	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/telegram/netutil"
)

var errBotNotStarted = errors.New("bot: not started")

// channelMessenger adapts the Bot API to the listing.Messenger port. The
// bot instance is bound at startup, after the service is already wired.
type channelMessenger struct {
	bot atomic.Pointer[tele.Bot]
}

// NewMessenger returns an unbound messenger. Bind attaches the running bot.
func NewMessenger() *channelMessenger {
	return &channelMessenger{}
}

// Bind attaches the running bot instance.
func (m *channelMessenger) Bind(b *tele.Bot) {
	m.bot.Store(b)
}

func (m *channelMessenger) api() (*tele.Bot, error) {
	b := m.bot.Load()
	if b == nil {
		return nil, errBotNotStarted
	}
	return b, nil
}

func markupFor(buttons listing.Buttons, listingID int64) *tele.ReplyMarkup {
	switch buttons {
	case listing.ButtonsManage:
		return handlers.ManageMarkup(listingID)
	case listing.ButtonsModeration:
		return handlers.ModerationMarkup(listingID)
	default:
		return nil
	}
}

func stored(chatID int64, messageID int) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
}

// isParseError reports whether the API rejected the message markup.
func isParseError(err error) bool {
	return netutil.BadRequestContains(err, "can't parse entities")
}

func isMessageMissing(err error) bool {
	return netutil.BadRequestContains(err, "message to edit not found") ||
		netutil.BadRequestContains(err, "MESSAGE_ID_INVALID") ||
		netutil.BadRequestContains(err, "message can't be edited")
}

func (m *channelMessenger) SendToChannel(ctx context.Context, chatID int64, text string, buttons listing.Buttons, listingID int64) (int, error) {
	b, err := m.api()
	if err != nil {
		return 0, err
	}
	markup := markupFor(buttons, listingID)
	msg, err := b.Send(tele.ChatID(chatID), text, &tele.SendOptions{ParseMode: tele.ModeMarkdownV2}, markup)
	if isParseError(err) {
		// The card text is escaped, but fall back to plain text rather
		// than lose the listing if an entity still slips through.
		msg, err = b.Send(tele.ChatID(chatID), text, markup)
	}
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (m *channelMessenger) DeleteFromChannel(ctx context.Context, chatID int64, messageID int) error {
	b, err := m.api()
	if err != nil {
		return err
	}
	return b.Delete(stored(chatID, messageID))
}

// MessageExists probes a channel post by clearing its reply markup. The
// only caller is the refresh flow, which deletes the post right after a
// positive probe, so the stripped buttons are never user visible.
func (m *channelMessenger) MessageExists(ctx context.Context, chatID int64, messageID int) (bool, error) {
	b, err := m.api()
	if err != nil {
		return false, err
	}
	_, err = b.EditReplyMarkup(stored(chatID, messageID), nil)
	if err == nil {
		return true, nil
	}
	if isMessageMissing(err) {
		return false, nil
	}
	if netutil.BadRequestContains(err, "message is not modified") {
		return true, nil
	}
	return false, err
}

func (m *channelMessenger) SendToUser(ctx context.Context, userID int64, text string) error {
	b, err := m.api()
	if err != nil {
		return err
	}
	_, err = b.Send(tele.ChatID(userID), text)
	return err
}
