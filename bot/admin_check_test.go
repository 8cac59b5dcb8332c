package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyDefaultsAndSwitch(t *testing.T) {
	p := NewPolicy("manual")
	assert.Equal(t, "manual", p.Mode())

	p.SetMode("auto")
	assert.Equal(t, "auto", p.Mode())
}

func TestAdminCheckerConfiguredIDs(t *testing.T) {
	a := NewAdminChecker(ChannelsConfig{}, []int64{10, 20})

	assert.True(t, a.IsAdmin(10))
	assert.True(t, a.IsAdmin(20))
	// Unknown user with no bound bot cannot be a channel admin either.
	assert.False(t, a.IsAdmin(30))
}

func TestAdminCheckerCachesLookups(t *testing.T) {
	a := NewAdminChecker(ChannelsConfig{Listings: -100}, nil)

	now := time.Now()
	a.now = func() time.Time { return now }

	assert.False(t, a.IsAdmin(30))

	// Within the TTL the cached verdict holds even if we plant a different one.
	a.cache[30] = adminCacheEntry{admin: true, until: now.Add(adminCacheTTL)}
	assert.True(t, a.IsAdmin(30))

	// Past the deadline the negative lookup happens again.
	now = now.Add(adminCacheTTL + time.Second)
	assert.False(t, a.IsAdmin(30))
}
