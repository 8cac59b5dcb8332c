package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(now *time.Time) *memoryManager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		now:      func() time.Time { return *now },
	}
}

func TestBeginAndTransitions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	m.Begin(42, State("form:nickname"), 15*time.Minute)
	assert.Equal(t, State("form:nickname"), m.GetState(42))
	assert.True(t, m.HasState(42))
	assert.True(t, m.InProgress(42))

	m.SetState(42, State("form:age"))
	assert.Equal(t, State("form:age"), m.GetState(42))

	m.ClearState(42)
	assert.Equal(t, StateIdle, m.GetState(42))
	assert.False(t, m.HasState(42))
}

func TestIdleSessionExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	m.Begin(7, State("form:age"), 15*time.Minute)
	m.SetTemp(7, "nickname", "Jack")

	now = now.Add(14 * time.Minute)
	assert.Equal(t, State("form:age"), m.GetState(7))

	// GetState touches nothing, so the original deadline still applies.
	now = now.Add(2 * time.Minute)
	assert.Equal(t, StateIdle, m.GetState(7))
	_, found := m.GetTemp(7, "nickname")
	assert.False(t, found)
}

func TestActivityRefreshesDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	m.Begin(7, State("form:nickname"), 15*time.Minute)

	now = now.Add(10 * time.Minute)
	m.SetState(7, State("form:age"))

	now = now.Add(10 * time.Minute)
	assert.Equal(t, State("form:age"), m.GetState(7), "deadline should move with each step")

	now = now.Add(16 * time.Minute)
	assert.Equal(t, StateIdle, m.GetState(7))
}

func TestTempDataAccessors(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	m.Begin(9, State("admin:panel"), 5*time.Minute)
	m.SetTemp(9, "listing_id", int64(314))
	m.SetTemp(9, "contact", "@jack")

	id, ok := m.GetTempInt64(9, "listing_id")
	require.True(t, ok)
	assert.Equal(t, int64(314), id)

	s, ok := m.GetTempString(9, "contact")
	require.True(t, ok)
	assert.Equal(t, "@jack", s)

	_, ok = m.GetTempInt64(9, "contact")
	assert.False(t, ok, "type mismatch should not assert")

	m.ClearTemp(9, "contact")
	_, ok = m.GetTemp(9, "contact")
	assert.False(t, ok)

	m.Clear(9)
	assert.False(t, m.HasState(9))
}

func TestSweepDropsOnlyExpiredSessions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	m.Begin(1, State("form:age"), 15*time.Minute)
	m.Begin(2, State("admin:panel"), 5*time.Minute)
	m.SetState(3, State("form:server")) // no TTL

	now = now.Add(10 * time.Minute)
	assert.Equal(t, 1, m.sweepExpired(), "only the admin session is past deadline")
	assert.True(t, m.HasState(1))
	assert.False(t, m.HasState(2))
	assert.True(t, m.HasState(3))

	now = now.Add(10 * time.Minute)
	assert.Equal(t, 1, m.sweepExpired())
	assert.False(t, m.HasState(1))
	assert.True(t, m.HasState(3), "sessions without a TTL are never swept")
}

func TestZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	m.SetState(3, State("form:server"))
	now = now.Add(48 * time.Hour)
	assert.Equal(t, State("form:server"), m.GetState(3))
}
