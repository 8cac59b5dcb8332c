package bot

import (
	"sync"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"
)

const adminCacheTTL = 5 * time.Minute

// adminChecker grants admin access to configured user IDs and to users who
// administer either operational channel. Channel lookups are cached. Like
// the messenger, the bot instance is bound at startup.
type adminChecker struct {
	bot      atomic.Pointer[tele.Bot]
	channels ChannelsConfig
	ids      map[int64]struct{}

	mu    sync.Mutex
	cache map[int64]adminCacheEntry
	now   func() time.Time
}

type adminCacheEntry struct {
	admin bool
	until time.Time
}

// NewAdminChecker builds the admin gate used by commands and callbacks.
func NewAdminChecker(channels ChannelsConfig, adminIDs []int64) *adminChecker {
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	return &adminChecker{
		channels: channels,
		ids:      ids,
		cache:    make(map[int64]adminCacheEntry),
		now:      time.Now,
	}
}

// Bind attaches the running bot instance.
func (a *adminChecker) Bind(b *tele.Bot) {
	a.bot.Store(b)
}

func (a *adminChecker) IsAdmin(userID int64) bool {
	if _, ok := a.ids[userID]; ok {
		return true
	}

	a.mu.Lock()
	if entry, ok := a.cache[userID]; ok && a.now().Before(entry.until) {
		a.mu.Unlock()
		return entry.admin
	}
	a.mu.Unlock()

	admin := a.channelAdmin(userID, a.channels.Moderation) || a.channelAdmin(userID, a.channels.Listings)

	a.mu.Lock()
	a.cache[userID] = adminCacheEntry{admin: admin, until: a.now().Add(adminCacheTTL)}
	a.mu.Unlock()
	return admin
}

func (a *adminChecker) channelAdmin(userID, chatID int64) bool {
	b := a.bot.Load()
	if b == nil || chatID == 0 {
		return false
	}
	member, err := b.ChatMemberOf(tele.ChatID(chatID), &tele.User{ID: userID})
	if err != nil {
		return false
	}
	return member.Role == tele.Creator || member.Role == tele.Administrator
}
