package listing

import (
	"fmt"
	"strings"

	"github.com/sotlfg/lfgbot/core/telegram/format"
)

const cardSeparator = `⚔️ ━━━━━━━━━━━━━━━ ⚔️`

// FormatListing renders the public channel card for a listing in MarkdownV2.
func FormatListing(l *Listing) string {
	esc := format.EscapeMarkdownV2

	searchTypeName := l.SearchType
	if st, ok := SearchTypeByKey(l.SearchType); ok {
		searchTypeName = st.Name
	}

	var b strings.Builder
	b.WriteString(cardSeparator + "\n\n")
	fmt.Fprintf(&b, "🎨 *Тип объявления:* %s\n", esc(searchTypeName))
	fmt.Fprintf(&b, "🎯 *Цель поиска:* %s\n\n", esc(l.SearchGoal))
	b.WriteString("👤 *Обо мне:*\n")
	fmt.Fprintf(&b, "👤 Никнейм: %s\n", esc(l.Nickname))
	fmt.Fprintf(&b, "⚧ Пол: %s\n", esc(l.Gender))
	fmt.Fprintf(&b, "🔢 Возраст: %d\n", l.Age)
	fmt.Fprintf(&b, "⭐ Опыт: %d часов\n", l.Experience)
	fmt.Fprintf(&b, "🎭 Роль: %s\n", esc(l.Role))
	fmt.Fprintf(&b, "⚔️ Фракция: %s\n", esc(l.Faction))
	fmt.Fprintf(&b, "🚢 Тип корабля: %s\n", esc(l.ShipType))
	fmt.Fprintf(&b, "🎮 Платформа: %s\n\n", esc(l.Platform))
	fmt.Fprintf(&b, "🌍 *Сервер:* %s\n\n", esc(l.Server))
	fmt.Fprintf(&b, "📋 *Дополнительная информация:*\n%s\n\n", esc(l.AdditionalInfo))
	fmt.Fprintf(&b, "📱 *Связь:*\n%s\n\n", esc(l.Contacts))
	b.WriteString(cardSeparator)
	return b.String()
}

// FormatModerationCard renders the review card sent to the moderation channel.
func FormatModerationCard(l *Listing) string {
	var b strings.Builder
	b.WriteString("🔍 *Новое объявление на модерацию*\n\n")
	b.WriteString(FormatListing(l))
	fmt.Fprintf(&b, "\n\n*ID:* `%d`", l.ID)
	return b.String()
}
