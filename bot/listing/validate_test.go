package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNickname(t *testing.T) {
	nick, err := ValidateNickname("  BlackFlag  ")
	require.Nil(t, err)
	assert.Equal(t, "BlackFlag", nick)

	_, err = ValidateNickname("   ")
	require.NotNil(t, err)
	assert.Equal(t, "nickname", err.Field)

	_, err = ValidateNickname(strings.Repeat("я", 101))
	assert.NotNil(t, err)

	_, err = ValidateNickname(strings.Repeat("я", 100))
	assert.Nil(t, err)
}

func TestValidateAgeBounds(t *testing.T) {
	for _, raw := range []string{"1", "100", " 25 "} {
		_, err := ValidateAge(raw)
		assert.Nil(t, err, raw)
	}
	for _, raw := range []string{"0", "101", "-5", "abc", ""} {
		_, err := ValidateAge(raw)
		assert.NotNil(t, err, raw)
	}
}

func TestValidateExperienceBounds(t *testing.T) {
	exp, err := ValidateExperience("0")
	require.Nil(t, err)
	assert.Equal(t, 0, exp)

	_, err = ValidateExperience("100000")
	assert.Nil(t, err)

	_, err = ValidateExperience("100001")
	assert.NotNil(t, err)

	_, err = ValidateExperience("-1")
	assert.NotNil(t, err)

	_, err = ValidateExperience("сто")
	assert.NotNil(t, err)
}

func TestValidateContactsRequiresMarker(t *testing.T) {
	cases := map[string]bool{
		"@captain":                 true,
		"Discord: sailor#1234":     true,
		"напишите в telegram":      true,
		"tel:+123456789":           true,
		"phone 555-0100":           true,
		"просто Вася":              false,
		"":                         false,
	}
	for raw, ok := range cases {
		_, err := ValidateContacts(raw)
		if ok {
			assert.Nil(t, err, raw)
		} else {
			assert.NotNil(t, err, raw)
		}
	}

	_, err := ValidateContacts("@" + strings.Repeat("x", 200))
	assert.NotNil(t, err)
}

func TestValidateContactsNormalizesWhitespace(t *testing.T) {
	contacts, err := ValidateContacts("  @captain   в  море ")
	require.Nil(t, err)
	assert.Equal(t, "@captain в море", contacts)
}

func TestValidateAdditionalInfoBounds(t *testing.T) {
	info, err := ValidateAdditionalInfo("  Ищу   команду  на вечер ")
	require.Nil(t, err)
	assert.Equal(t, "Ищу команду на вечер", info)

	_, err = ValidateAdditionalInfo("коротко")
	assert.NotNil(t, err)

	_, err = ValidateAdditionalInfo(strings.Repeat("а", 501))
	assert.NotNil(t, err)

	_, err = ValidateAdditionalInfo(strings.Repeat("а", 500))
	assert.Nil(t, err)
}

func TestListingValidateCatchesEveryField(t *testing.T) {
	base := func() *Listing {
		l := validListing(1)
		l.ModerationType = ModerationManual
		return l
	}

	require.Nil(t, base().Validate())

	mutations := map[string]func(*Listing){
		"nickname":        func(l *Listing) { l.Nickname = "" },
		"age":             func(l *Listing) { l.Age = 0 },
		"experience":      func(l *Listing) { l.Experience = -1 },
		"search_type":     func(l *Listing) { l.SearchType = "guild" },
		"search_goal":     func(l *Listing) { l.SearchGoal = "PvX" },
		"gender":          func(l *Listing) { l.Gender = "другое" },
		"role":            func(l *Listing) { l.Role = "Капитан" },
		"faction":         func(l *Listing) { l.Faction = "Пираты" },
		"server":          func(l *Listing) { l.Server = "Луна" },
		"ship_type":       func(l *Listing) { l.ShipType = "Плот" },
		"platform":        func(l *Listing) { l.Platform = "Switch" },
		"moderation_type": func(l *Listing) { l.ModerationType = "none" },
		"contacts":        func(l *Listing) { l.Contacts = "без контактов" },
		"additional_info": func(l *Listing) { l.AdditionalInfo = "мало" },
	}
	for field, mutate := range mutations {
		l := base()
		mutate(l)
		err := l.Validate()
		require.NotNil(t, err, field)
		assert.Equal(t, field, err.Field)
	}
}
