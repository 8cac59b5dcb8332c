package format

import "strings"

const mdV2Specials = "_*[]()~`>#+-=|{}.!\\"

// EscapeMarkdownV2 escapes all characters MarkdownV2 treats as syntax so
// user-supplied text can be embedded in formatted messages verbatim.
func EscapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 && strings.ContainsRune(mdV2Specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
