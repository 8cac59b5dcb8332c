package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

const defaultCancelButtonText = "❌ Отмена"

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// ReplyOptions lays out a flat list of labels as a reply keyboard with up to
// n buttons per row. Used by the listing form to present enum choices.
func ReplyOptions(labels []string, n int) *tele.ReplyMarkup {
	if n <= 1 {
		rows := make([][]string, 0, len(labels))
		for _, l := range labels {
			rows = append(rows, []string{l})
		}
		return ReplyButtons(rows...)
	}
	var rows [][]string
	for i := 0; i < len(labels); i += n {
		end := i + n
		if end > len(labels) {
			end = len(labels)
		}
		rows = append(rows, labels[i:end])
	}
	return ReplyButtons(rows...)
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// CancelButton returns a reusable cancel inline button for the provided markup and action.
// Optional arguments allow overriding payload (first value) and button label (second value).
func CancelButton(markup *tele.ReplyMarkup, action string, options ...string) tele.Btn {
	payload := "cancel"
	if len(options) > 0 && options[0] != "" {
		payload = options[0]
	}
	text := defaultCancelButtonText
	if len(options) > 1 && options[1] != "" {
		text = options[1]
	}
	return markup.Data(text, action, payload)
}

// SingleCancelMarkup creates an inline keyboard with a single cancel button.
func SingleCancelMarkup(action string, options ...string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	btn := CancelButton(markup, action, options...)
	markup.InlineKeyboard = [][]tele.InlineButton{{*btn.Inline()}}
	return markup
}
