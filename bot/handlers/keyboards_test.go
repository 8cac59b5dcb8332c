package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sotlfg/lfgbot/bot/listing"
)

func TestMainMenuLayout(t *testing.T) {
	markup := MainMenu()
	require.Len(t, markup.ReplyKeyboard, 1)
	row := markup.ReplyKeyboard[0]
	require.Len(t, row, 3)
	assert.Equal(t, MenuCreate, row[0].Text)
	assert.Equal(t, MenuManage, row[1].Text)
	assert.Equal(t, MenuCancel, row[2].Text)
	assert.True(t, markup.ResizeKeyboard)
}

func TestManageMarkupTargetsListing(t *testing.T) {
	markup := ManageMarkup(42)
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, CallbackRefresh, row[0].Unique)
	assert.Equal(t, "42", row[0].Data)
	assert.Equal(t, CallbackDelete, row[1].Unique)
	assert.Equal(t, "42", row[1].Data)
}

func TestModerationMarkupTargetsListing(t *testing.T) {
	markup := ModerationMarkup(7)
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, CallbackModApprove, row[0].Unique)
	assert.Equal(t, CallbackModDecline, row[1].Unique)
	assert.Equal(t, "7", row[1].Data)
}

func TestAdminMarkupActions(t *testing.T) {
	markup := AdminMarkup()
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, CallbackAdminModeAuto, markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, CallbackAdminModeManual, markup.InlineKeyboard[0][1].Unique)
	assert.Equal(t, CallbackAdminClearAll, markup.InlineKeyboard[1][0].Unique)
}

func TestContactTypeMarkupOffersBothKinds(t *testing.T) {
	markup := ContactTypeMarkup()
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, CallbackContactTelegram, row[0].Unique)
	assert.Equal(t, "telegram", row[0].Data)
	assert.Equal(t, CallbackContactDiscord, row[1].Unique)
	assert.Equal(t, "discord", row[1].Data)
}

func TestOptionKeyboardChunksAndAppendsCancel(t *testing.T) {
	markup := optionKeyboard(listing.Roles)

	var labels []string
	for _, row := range markup.ReplyKeyboard {
		assert.LessOrEqual(t, len(row), 2)
		for _, btn := range row {
			labels = append(labels, btn.Text)
		}
	}
	require.Len(t, labels, len(listing.Roles)+1)
	assert.Equal(t, listing.Roles, labels[:len(listing.Roles)])
	assert.Equal(t, MenuCancel, labels[len(labels)-1])
}
