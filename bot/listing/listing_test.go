package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTypeLookup(t *testing.T) {
	st, ok := SearchTypeByKey("party")
	require.True(t, ok)
	assert.Equal(t, "Поиск пати", st.Name)
	assert.Equal(t, 24*time.Hour, st.Duration)

	st, ok = SearchTypeByName("Мы команда")
	require.True(t, ok)
	assert.Equal(t, "team", st.Key)
	assert.Equal(t, 7*24*time.Hour, st.Duration)

	_, ok = SearchTypeByKey("guild")
	assert.False(t, ok)
}

func TestAutoCheck(t *testing.T) {
	pass := validListing(1)
	ok, reason := pass.AutoCheck()
	assert.True(t, ok)
	assert.Empty(t, reason)

	spam := validListing(1)
	spam.AdditionalInfo = "Cheap gold, best PRICE for you"
	ok, reason = spam.AutoCheck()
	assert.False(t, ok)
	assert.Contains(t, reason, "спама")

	young := validListing(1)
	young.Age = 12
	ok, _ = young.AutoCheck()
	assert.False(t, ok)

	grinder := validListing(1)
	grinder.Experience = 50001
	ok, _ = grinder.AutoCheck()
	assert.False(t, ok)

	impostor := validListing(1)
	impostor.Nickname = "chief_MODERATOR"
	ok, reason = impostor.AutoCheck()
	assert.False(t, ok)
	assert.Contains(t, reason, "Никнейм")
}

func TestExpired(t *testing.T) {
	now := time.Now()

	l := validListing(1)
	assert.False(t, l.Expired(now), "no expiry set")

	past := now.Add(-time.Minute)
	l.ExpiresAt = &past
	assert.True(t, l.Expired(now))

	future := now.Add(time.Minute)
	l.ExpiresAt = &future
	assert.False(t, l.Expired(now))
}
