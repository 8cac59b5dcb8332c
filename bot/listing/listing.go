// Package listing holds the LFG listing domain: the entity, its enumerations,
// validation, persistence, and the publish/moderation lifecycle.
package listing

import (
	"strings"
	"time"
)

// Listing statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Moderation modes.
const (
	ModerationManual = "manual"
	ModerationAuto   = "auto"
)

// SearchType describes one of the supported search kinds and how long a
// published listing of that kind stays up.
type SearchType struct {
	Key      string
	Name     string
	Duration time.Duration
}

// SearchTypes enumerates the supported search kinds in presentation order.
var SearchTypes = []SearchType{
	{Key: "party", Name: "Поиск пати", Duration: 24 * time.Hour},
	{Key: "player", Name: "Я игрок", Duration: 7 * 24 * time.Hour},
	{Key: "team", Name: "Мы команда", Duration: 7 * 24 * time.Hour},
}

// SearchTypeByKey resolves a search type by its stored key.
func SearchTypeByKey(key string) (SearchType, bool) {
	for _, st := range SearchTypes {
		if st.Key == key {
			return st, true
		}
	}
	return SearchType{}, false
}

// SearchTypeByName resolves a search type by its button label.
func SearchTypeByName(name string) (SearchType, bool) {
	for _, st := range SearchTypes {
		if st.Name == name {
			return st, true
		}
	}
	return SearchType{}, false
}

// Form field option lists, in presentation order.
var (
	SearchGoals = []string{"PvP", "PvE"}

	Genders = []string{"Мужской", "Женский", "Не важно"}

	Roles = []string{"Рулевой", "Мейн", "Саппорт", "Дека", "Универсал"}

	Factions = []string{
		"Ордер душ",
		"Торговый союз",
		"Златодержцы",
		"Кости мертвеца",
		"Сокровища Афины",
		"Братство охотников",
	}

	Servers = []string{"Европа", "Америка", "Азия"}

	ShipTypes = []string{"Шлюп", "Бригантина", "Галеон"}

	Platforms = []string{"PC", "Xbox", "PS"}
)

// Listing is a single looking-for-group post.
type Listing struct {
	ID              int64      `db:"id"`
	UserID          int64      `db:"user_id"`
	Nickname        string     `db:"nickname"`
	Gender          string     `db:"gender"`
	Age             int        `db:"age"`
	Experience      int        `db:"experience"`
	Role            string     `db:"role"`
	Faction         string     `db:"faction"`
	Server          string     `db:"server"`
	ShipType        string     `db:"ship_type"`
	Platform        string     `db:"platform"`
	AdditionalInfo  string     `db:"additional_info"`
	Contacts        string     `db:"contacts"`
	SearchType      string     `db:"search_type"`
	SearchGoal      string     `db:"search_goal"`
	ModerationType  string     `db:"moderation_type"`
	Status          string     `db:"status"`
	RejectionReason *string    `db:"rejection_reason"`
	CreatedAt       time.Time  `db:"created_at"`
	ExpiresAt       *time.Time `db:"expires_at"`
	IsActive        bool       `db:"is_active"`
	MessageID       *int       `db:"message_id"`
}

var spamKeywords = []string{"buy", "sell", "cheap", "discount", "offer", "price"}

var forbiddenNicknameWords = []string{"admin", "moderator", "support"}

// AutoCheck screens the listing content for obvious problems. It returns
// whether the listing passes and, when it does not, a human-readable reason.
func (l *Listing) AutoCheck() (bool, string) {
	info := strings.ToLower(l.AdditionalInfo)
	for _, kw := range spamKeywords {
		if strings.Contains(info, kw) {
			return false, "Обнаружены признаки рекламы или спама"
		}
	}

	if l.Age < 13 {
		return false, "Возраст должен быть не менее 13 лет"
	}

	if l.Experience > 50000 {
		return false, "Подозрительно большое значение опыта"
	}

	nick := strings.ToLower(l.Nickname)
	for _, word := range forbiddenNicknameWords {
		if strings.Contains(nick, word) {
			return false, "Никнейм содержит запрещенные слова"
		}
	}

	return true, ""
}

// Expired reports whether the listing is past its expiry at the given moment.
func (l *Listing) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}
