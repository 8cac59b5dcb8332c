package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatListingEscapesUserText(t *testing.T) {
	l := validListing(1)
	l.Nickname = "pirate_one"
	l.AdditionalInfo = "Ищу команду (вечером), можно PvE!"

	card := FormatListing(l)

	assert.Contains(t, card, `pirate\_one`)
	assert.Contains(t, card, `\(вечером\), можно PvE\!`)
	assert.Contains(t, card, "*Тип объявления:* Поиск пати")
	assert.Contains(t, card, "*Цель поиска:* PvE")
	assert.True(t, strings.HasPrefix(card, cardSeparator))
	assert.True(t, strings.HasSuffix(card, cardSeparator))
}

func TestFormatListingFallsBackToRawSearchType(t *testing.T) {
	l := validListing(1)
	l.SearchType = "unknown"
	assert.Contains(t, FormatListing(l), "unknown")
}

func TestFormatModerationCardCarriesID(t *testing.T) {
	l := validListing(1)
	l.ID = 42

	card := FormatModerationCard(l)
	require.True(t, strings.HasPrefix(card, "🔍 *Новое объявление на модерацию*"))
	assert.Contains(t, card, FormatListing(l))
	assert.Contains(t, card, "*ID:* `42`")
}
