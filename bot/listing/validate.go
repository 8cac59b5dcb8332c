package listing

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError reports a single rejected form value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("listing: invalid %s: %s", e.Field, e.Reason)
}

// Code satisfies the router's error classifier.
func (e *ValidationError) Code() string { return "VALIDATION" }

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// normalizeText trims and collapses runs of whitespace to single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ValidateNickname checks a nickname value and returns the accepted form.
func ValidateNickname(raw string) (string, *ValidationError) {
	nick := strings.TrimSpace(raw)
	if nick == "" {
		return "", invalid("nickname", "Никнейм не может быть пустым")
	}
	if len([]rune(nick)) > 100 {
		return "", invalid("nickname", "Никнейм слишком длинный (максимум 100 символов)")
	}
	return nick, nil
}

// ValidateAge parses and range-checks an age entry.
func ValidateAge(raw string) (int, *ValidationError) {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || age < 1 || age > 100 {
		return 0, invalid("age", "Возраст должен быть числом от 1 до 100")
	}
	return age, nil
}

// ValidateExperience parses and range-checks a play-time entry in hours.
func ValidateExperience(raw string) (int, *ValidationError) {
	exp, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || exp < 0 {
		return 0, invalid("experience", "Опыт должен быть положительным числом")
	}
	if exp > 100000 {
		return 0, invalid("experience", "Указано слишком большое значение опыта")
	}
	return exp, nil
}

// ValidateChoice checks that the value is one of the allowed options.
func ValidateChoice(field, value string, options []string) (string, *ValidationError) {
	value = strings.TrimSpace(value)
	for _, opt := range options {
		if value == opt {
			return value, nil
		}
	}
	return "", invalid(field, "Выберите значение из предложенных вариантов")
}

var contactMarkers = []string{"@", "discord", "telegram", "tel:", "phone"}

// ValidateContacts normalizes the contact line and requires at least one
// recognizable way to reach the author.
func ValidateContacts(raw string) (string, *ValidationError) {
	contacts := normalizeText(raw)
	if len([]rune(contacts)) > 200 {
		return "", invalid("contacts", "Контакты слишком длинные (максимум 200 символов)")
	}
	lower := strings.ToLower(contacts)
	for _, marker := range contactMarkers {
		if strings.Contains(lower, marker) {
			return contacts, nil
		}
	}
	return "", invalid("contacts", "Укажите хотя бы один способ связи (Telegram, Discord и т.д.)")
}

// ValidateAdditionalInfo normalizes the free-text description and bounds its length.
func ValidateAdditionalInfo(raw string) (string, *ValidationError) {
	info := normalizeText(raw)
	if len([]rune(info)) < 10 {
		return "", invalid("additional_info", "Дополнительная информация должна содержать минимум 10 символов")
	}
	if len([]rune(info)) > 500 {
		return "", invalid("additional_info", "Описание слишком длинное (максимум 500 символов)")
	}
	return info, nil
}

// Validate checks all fields of an assembled listing before persistence.
func (l *Listing) Validate() *ValidationError {
	if _, err := ValidateNickname(l.Nickname); err != nil {
		return err
	}
	if _, err := ValidateAge(strconv.Itoa(l.Age)); err != nil {
		return err
	}
	if _, err := ValidateExperience(strconv.Itoa(l.Experience)); err != nil {
		return err
	}
	if _, ok := SearchTypeByKey(l.SearchType); !ok {
		return invalid("search_type", "Некорректный тип поиска")
	}
	if _, err := ValidateChoice("search_goal", l.SearchGoal, SearchGoals); err != nil {
		return err
	}
	if _, err := ValidateChoice("gender", l.Gender, Genders); err != nil {
		return err
	}
	if _, err := ValidateChoice("role", l.Role, Roles); err != nil {
		return err
	}
	if _, err := ValidateChoice("faction", l.Faction, Factions); err != nil {
		return err
	}
	if _, err := ValidateChoice("server", l.Server, Servers); err != nil {
		return err
	}
	if _, err := ValidateChoice("ship_type", l.ShipType, ShipTypes); err != nil {
		return err
	}
	if _, err := ValidateChoice("platform", l.Platform, Platforms); err != nil {
		return err
	}
	if l.ModerationType != ModerationManual && l.ModerationType != ModerationAuto {
		return invalid("moderation_type", "Некорректный тип модерации")
	}
	if _, err := ValidateContacts(l.Contacts); err != nil {
		return err
	}
	if _, err := ValidateAdditionalInfo(l.AdditionalInfo); err != nil {
		return err
	}
	return nil
}
