// Package handlers implements the bot-facing flows: the listing form,
// listing management, the moderation queue and the admin panel.
package handlers

// Callback uniques routed through the shared callback registry.
const (
	CallbackRefresh = "refresh"
	CallbackDelete  = "delete"

	CallbackModApprove = "mod_approve"
	CallbackModDecline = "mod_decline"

	CallbackAdminModeAuto   = "admin_mod_auto"
	CallbackAdminModeManual = "admin_mod_manual"
	CallbackAdminClearAll   = "admin_clear_all"

	CallbackContactTelegram = "contact_telegram"
	CallbackContactDiscord  = "contact_discord"

	CallbackFormCancel = "form_cancel"
)

// Reply-menu labels doubling as command aliases.
const (
	MenuCreate = "Создать анкету"
	MenuManage = "Мои анкеты"
	MenuCancel = "Отмена"
)
