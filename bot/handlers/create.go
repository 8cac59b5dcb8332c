package handlers

import (
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/telegram/helpers"
	"github.com/sotlfg/lfgbot/core/telegram/keyboard"
	"github.com/sotlfg/lfgbot/core/telegram/state"
)

// Form steps, one per field of the listing.
const (
	StateSearchType     state.State = "form:search_type"
	StateSearchGoal     state.State = "form:search_goal"
	StateNickname       state.State = "form:nickname"
	StateGender         state.State = "form:gender"
	StateAge            state.State = "form:age"
	StateExperience     state.State = "form:experience"
	StateRole           state.State = "form:role"
	StateFaction        state.State = "form:faction"
	StateServer         state.State = "form:server"
	StateShipType       state.State = "form:ship_type"
	StatePlatform       state.State = "form:platform"
	StateContacts       state.State = "form:contacts"
	StateAdditionalInfo state.State = "form:additional_info"
)

// Scratch keys for collected answers.
const (
	tempSearchType      = "search_type"
	tempSearchGoal      = "search_goal"
	tempNickname        = "nickname"
	tempGender          = "gender"
	tempAge             = "age"
	tempExperience      = "experience"
	tempRole            = "role"
	tempFaction         = "faction"
	tempServer          = "server"
	tempShipType        = "ship_type"
	tempPlatform        = "platform"
	tempContacts        = "contacts"
	tempAwaitingDiscord = "awaiting_discord"
	tempAdditionalInfo  = "additional_info"
)

// RegisterFormSteps wires every form state into the FSM dispatcher.
func RegisterFormSteps(d *Deps) {
	state.RegisterHandler(StateSearchType, d.handleSearchType)
	state.RegisterHandler(StateSearchGoal, d.handleSearchGoal)
	state.RegisterHandler(StateNickname, d.handleNickname)
	state.RegisterHandler(StateGender, d.handleGender)
	state.RegisterHandler(StateAge, d.handleAge)
	state.RegisterHandler(StateExperience, d.handleExperience)
	state.RegisterHandler(StateRole, d.handleRole)
	state.RegisterHandler(StateFaction, d.handleFaction)
	state.RegisterHandler(StateServer, d.handleServer)
	state.RegisterHandler(StateShipType, d.handleShipType)
	state.RegisterHandler(StatePlatform, d.handlePlatform)
	state.RegisterHandler(StateContacts, d.handleContacts)
	state.RegisterHandler(StateAdditionalInfo, d.handleAdditionalInfo)
	state.RegisterHandler(StateAdminPanel, d.handleAdminPanelState)
}

func searchTypeLabels() []string {
	labels := make([]string, 0, len(listing.SearchTypes))
	for _, st := range listing.SearchTypes {
		labels = append(labels, st.Name)
	}
	return labels
}

// StartCreate begins the listing form unless the user already has a
// published listing.
func (d *Deps) StartCreate(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	busy, err := d.Svc.HasActivePublished(ctx, userID)
	if err != nil {
		return helpers.SendText(c, "Произошла ошибка при создании объявления. Пожалуйста, попробуйте позже.")
	}
	if busy {
		return helpers.SendText(c,
			"У вас уже есть активное объявление. Используйте /manage для управления существующими объявлениями.")
	}

	d.States.Begin(userID, StateSearchType, FormTTL)
	return helpers.SendText(c,
		"Давайте создадим новое объявление! Для начала, выберите тип поиска:",
		&tele.SendOptions{ReplyMarkup: optionKeyboard(searchTypeLabels())})
}

// Cancel aborts any conversation and restores the main menu.
func (d *Deps) Cancel(c tele.Context) error {
	d.States.Clear(c.Sender().ID)
	return helpers.SendText(c, "Действие отменено.", &tele.SendOptions{ReplyMarkup: MainMenu()})
}

func cancelRequested(c tele.Context) bool {
	return strings.TrimSpace(c.Text()) == MenuCancel
}

// choiceStep validates a button answer, stores it and advances the form.
func (d *Deps) choiceStep(c tele.Context, field, key string, options []string, next state.State, prompt string, markup *tele.ReplyMarkup, wrong string) error {
	if cancelRequested(c) {
		return d.Cancel(c)
	}
	userID := c.Sender().ID
	value, vErr := listing.ValidateChoice(field, c.Text(), options)
	if vErr != nil {
		return helpers.SendText(c, wrong)
	}
	d.States.SetTemp(userID, key, value)
	d.States.SetState(userID, next)
	opts := &tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()}
	if markup != nil {
		opts.ReplyMarkup = markup
	}
	return helpers.SendText(c, prompt, opts)
}

func (d *Deps) handleSearchType(c tele.Context) error {
	if cancelRequested(c) {
		return d.Cancel(c)
	}
	userID := c.Sender().ID
	st, ok := listing.SearchTypeByName(strings.TrimSpace(c.Text()))
	if !ok {
		return helpers.SendText(c, "Пожалуйста, выберите корректный тип поиска.")
	}
	d.States.SetTemp(userID, tempSearchType, st.Key)
	d.States.SetState(userID, StateSearchGoal)
	return helpers.SendText(c, "Выберите цель поиска:",
		&tele.SendOptions{ReplyMarkup: optionKeyboard(listing.SearchGoals)})
}

func (d *Deps) handleSearchGoal(c tele.Context) error {
	return d.choiceStep(c, "search_goal", tempSearchGoal, listing.SearchGoals,
		StateNickname, "Отлично! Теперь введите ваш никнейм:", nil,
		"Пожалуйста, выберите цель поиска из предложенных вариантов.")
}

func (d *Deps) handleNickname(c tele.Context) error {
	if cancelRequested(c) {
		return d.Cancel(c)
	}
	userID := c.Sender().ID
	nickname, vErr := listing.ValidateNickname(c.Text())
	if vErr != nil {
		if strings.TrimSpace(c.Text()) == "" {
			return helpers.SendText(c, "Никнейм не может быть пустым. Пожалуйста, введите ваш никнейм:")
		}
		return helpers.SendText(c,
			"Никнейм слишком длинный (максимум 100 символов). Пожалуйста, введите более короткий никнейм:")
	}
	d.States.SetTemp(userID, tempNickname, nickname)
	d.States.SetState(userID, StateGender)
	return helpers.SendText(c, "Выберите ваш пол:",
		&tele.SendOptions{ReplyMarkup: optionKeyboard(listing.Genders)})
}

func (d *Deps) handleGender(c tele.Context) error {
	return d.choiceStep(c, "gender", tempGender, listing.Genders,
		StateAge, "Введите ваш возраст (числом):", nil,
		"Пожалуйста, выберите пол из предложенных вариантов.")
}

func (d *Deps) handleAge(c tele.Context) error {
	if cancelRequested(c) {
		return d.Cancel(c)
	}
	userID := c.Sender().ID
	age, vErr := listing.ValidateAge(c.Text())
	if vErr != nil {
		return helpers.SendText(c, "Пожалуйста, введите корректный возраст (число от 1 до 100):")
	}
	d.States.SetTemp(userID, tempAge, int64(age))
	d.States.SetState(userID, StateExperience)
	return helpers.SendText(c, "Введите ваш опыт в игре (в часах):",
		&tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(CallbackFormCancel)})
}

func (d *Deps) handleExperience(c tele.Context) error {
	if cancelRequested(c) {
		return d.Cancel(c)
	}
	userID := c.Sender().ID
	exp, vErr := listing.ValidateExperience(c.Text())
	if vErr != nil {
		return helpers.SendText(c,
			"Пожалуйста, введите корректное количество часов (положительное число):")
	}
	d.States.SetTemp(userID, tempExperience, int64(exp))
	d.States.SetState(userID, StateRole)
	return helpers.SendText(c, "Выберите вашу роль на корабле:",
		&tele.SendOptions{ReplyMarkup: optionKeyboard(listing.Roles)})
}

func (d *Deps) handleRole(c tele.Context) error {
	return d.choiceStep(c, "role", tempRole, listing.Roles,
		StateFaction, "Выберите вашу фракцию:", optionKeyboard(listing.Factions),
		"Пожалуйста, выберите роль из предложенных вариантов.")
}

func (d *Deps) handleFaction(c tele.Context) error {
	return d.choiceStep(c, "faction", tempFaction, listing.Factions,
		StateServer, "Выберите сервер:", optionKeyboard(listing.Servers),
		"Пожалуйста, выберите фракцию из предложенных вариантов.")
}

func (d *Deps) handleServer(c tele.Context) error {
	return d.choiceStep(c, "server", tempServer, listing.Servers,
		StateShipType, "Выберите тип корабля:", optionKeyboard(listing.ShipTypes),
		"Пожалуйста, выберите сервер из предложенных вариантов.")
}

func (d *Deps) handleShipType(c tele.Context) error {
	return d.choiceStep(c, "ship_type", tempShipType, listing.ShipTypes,
		StatePlatform, "Выберите платформу:", optionKeyboard(listing.Platforms),
		"Пожалуйста, выберите тип корабля из предложенных вариантов.")
}

func (d *Deps) handlePlatform(c tele.Context) error {
	return d.choiceStep(c, "platform", tempPlatform, listing.Platforms,
		StateContacts, "Выберите способ связи:", keyboard.ReplyButtons(
			[]string{"Telegram"}, []string{"Discord"}, []string{MenuCancel}),
		"Пожалуйста, выберите платформу из предложенных вариантов.")
}

func (d *Deps) handleContacts(c tele.Context) error {
	if cancelRequested(c) {
		return d.Cancel(c)
	}
	userID := c.Sender().ID
	answer := strings.TrimSpace(c.Text())

	switch strings.ToLower(answer) {
	case "telegram":
		username := c.Sender().Username
		if username == "" {
			return helpers.SendText(c,
				"❗ У вас не установлен username в Telegram. Пожалуйста, установите его в настройках или выберите другой способ связи.",
				&tele.SendOptions{ReplyMarkup: ContactTypeMarkup()})
		}
		d.States.SetTemp(userID, tempContacts, "@"+username)
		d.States.SetState(userID, StateAdditionalInfo)
		return helpers.SendText(c,
			"Введите дополнительную информацию (цель поиска, предпочтения и т.д.):",
			&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})

	case "discord":
		d.States.SetTemp(userID, tempAwaitingDiscord, "1")
		return helpers.SendText(c, "Введите ваш Discord (например: username#1234):")
	}

	if _, waiting := d.States.GetTempString(userID, tempAwaitingDiscord); waiting {
		d.States.ClearTemp(userID, tempAwaitingDiscord)
		if answer == "" || len([]rune(answer)) > 100 {
			return helpers.SendText(c,
				"❗ Пожалуйста, введите корректный Discord (например: username#1234):")
		}
		if !strings.HasPrefix(strings.ToLower(answer), "discord:") {
			answer = "Discord: " + answer
		}
		d.States.SetTemp(userID, tempContacts, answer)
		d.States.SetState(userID, StateAdditionalInfo)
		return helpers.SendText(c,
			"Введите дополнительную информацию (цель поиска, предпочтения и т.д.):",
			&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
	}

	return helpers.SendText(c, "Пожалуйста, выберите корректный способ связи.")
}

func (d *Deps) handleAdditionalInfo(c tele.Context) error {
	if cancelRequested(c) {
		return d.Cancel(c)
	}
	userID := c.Sender().ID

	info, vErr := listing.ValidateAdditionalInfo(c.Text())
	if vErr != nil {
		switch {
		case strings.TrimSpace(c.Text()) == "":
			return helpers.SendText(c,
				"❗ Пожалуйста, введите дополнительную информацию о ваших целях и предпочтениях:\n"+
					"Например: 'Ищу команду для прохождения рейда' или 'Хочу фармить форты'")
		case len([]rune(strings.TrimSpace(c.Text()))) < 10:
			return helpers.SendText(c,
				"❗ Слишком короткое описание. Пожалуйста, добавьте больше деталей о том, что вы хотите делать в игре (минимум 10 символов)")
		default:
			return helpers.SendText(c,
				"❗ Описание слишком длинное (максимум 500 символов). Пожалуйста, сократите текст.")
		}
	}
	d.States.SetTemp(userID, tempAdditionalInfo, info)

	return d.submitForm(c)
}

// submitForm assembles the listing from scratch data and hands it to the
// service. The session is cleared on every terminal outcome.
func (d *Deps) submitForm(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	contacts, ok := d.States.GetTempString(userID, tempContacts)
	if !ok || contacts == "" {
		d.States.Clear(userID)
		return helpers.SendText(c,
			"Ошибка: контактные данные не установлены. Используйте /create чтобы начать заново.",
			&tele.SendOptions{ReplyMarkup: MainMenu()})
	}

	l := &listing.Listing{UserID: userID, Contacts: contacts}
	l.SearchType, _ = d.States.GetTempString(userID, tempSearchType)
	l.SearchGoal, _ = d.States.GetTempString(userID, tempSearchGoal)
	l.Nickname, _ = d.States.GetTempString(userID, tempNickname)
	l.Gender, _ = d.States.GetTempString(userID, tempGender)
	l.Role, _ = d.States.GetTempString(userID, tempRole)
	l.Faction, _ = d.States.GetTempString(userID, tempFaction)
	l.Server, _ = d.States.GetTempString(userID, tempServer)
	l.ShipType, _ = d.States.GetTempString(userID, tempShipType)
	l.Platform, _ = d.States.GetTempString(userID, tempPlatform)
	l.AdditionalInfo, _ = d.States.GetTempString(userID, tempAdditionalInfo)
	if age, ok := d.States.GetTempInt64(userID, tempAge); ok {
		l.Age = int(age)
	}
	if exp, ok := d.States.GetTempInt64(userID, tempExperience); ok {
		l.Experience = int(exp)
	}

	d.States.Clear(userID)

	published, err := d.Svc.Create(ctx, l)
	if err != nil {
		var verr *listing.ValidationError
		switch {
		case errors.Is(err, listing.ErrActiveExists):
			return helpers.SendText(c,
				"❌ У вас уже есть активное объявление. Используйте /manage для управления существующими объявлениями.",
				&tele.SendOptions{ReplyMarkup: MainMenu()})
		case errors.As(err, &verr):
			return helpers.SendText(c,
				"❌ "+verr.Reason+" Используйте /create чтобы начать заново.",
				&tele.SendOptions{ReplyMarkup: MainMenu()})
		default:
			return helpers.SendText(c,
				"❌ Ошибка при отправке объявления. Пожалуйста, попробуйте позже с /create",
				&tele.SendOptions{ReplyMarkup: MainMenu()})
		}
	}

	if published {
		return helpers.SendText(c,
			"✅ Ваше объявление было автоматически одобрено и опубликовано!",
			&tele.SendOptions{ReplyMarkup: MainMenu()})
	}
	return helpers.SendText(c,
		"✅ Объявление создано и отправлено на модерацию!\nВы получите уведомление после проверки.",
		&tele.SendOptions{ReplyMarkup: MainMenu()})
}

// ContactTelegram handles the inline variant of the contact choice.
func (d *Deps) ContactTelegram(c tele.Context) error {
	if d.States.GetState(c.Sender().ID) != StateContacts {
		return nil
	}
	username := c.Sender().Username
	if username == "" {
		return helpers.SendText(c,
			"❗ У вас не установлен username в Telegram. Пожалуйста, установите его в настройках или выберите другой способ связи.",
			&tele.SendOptions{ReplyMarkup: ContactTypeMarkup()})
	}
	userID := c.Sender().ID
	d.States.SetTemp(userID, tempContacts, "@"+username)
	d.States.SetState(userID, StateAdditionalInfo)
	return helpers.SendText(c,
		"Введите дополнительную информацию (цель поиска, предпочтения и т.д.):",
		&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
}

// ContactDiscord handles the inline variant of the contact choice.
func (d *Deps) ContactDiscord(c tele.Context) error {
	userID := c.Sender().ID
	if d.States.GetState(userID) != StateContacts {
		return nil
	}
	d.States.SetTemp(userID, tempAwaitingDiscord, "1")
	return helpers.SendText(c, "Введите ваш Discord (например: username#1234):")
}
