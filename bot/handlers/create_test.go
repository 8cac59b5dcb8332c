package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/telegram/state"
)

// fakeContext implements just the surface the handlers touch. Anything
// else panics through the embedded nil interface, which is what we want
// in a test.
type fakeContext struct {
	tele.Context

	user  *tele.User
	text  string
	store map[string]interface{}

	sent    []string
	markups []*tele.ReplyMarkup
}

func newFakeContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		user:  &tele.User{ID: userID, Username: "jack"},
		text:  text,
		store: make(map[string]interface{}),
	}
}

func (f *fakeContext) Sender() *tele.User  { return f.user }
func (f *fakeContext) Chat() *tele.Chat    { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }
func (f *fakeContext) Text() string        { return f.text }

func (f *fakeContext) Get(key string) interface{}      { return f.store[key] }
func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok && so.ReplyMarkup != nil {
			f.markups = append(f.markups, so.ReplyMarkup)
		}
	}
	return nil
}

func (f *fakeContext) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type stubStore struct {
	hasPublished bool
	created      []*listing.Listing
}

func (s *stubStore) Create(ctx context.Context, l *listing.Listing, publish func(*listing.Listing) error) error {
	l.ID = int64(len(s.created) + 1)
	if publish != nil {
		if err := publish(l); err != nil {
			return err
		}
	}
	cp := *l
	s.created = append(s.created, &cp)
	return nil
}

func (s *stubStore) GetByID(ctx context.Context, id int64) (*listing.Listing, error) {
	return nil, listing.ErrNotFound
}

func (s *stubStore) ActiveApprovedByUser(ctx context.Context, userID int64) ([]listing.Listing, error) {
	return nil, nil
}

func (s *stubStore) HasActivePublished(ctx context.Context, userID int64) (bool, error) {
	return s.hasPublished, nil
}

func (s *stubStore) UpdateStatus(ctx context.Context, id int64, status string, reason *string) error {
	return nil
}

func (s *stubStore) SetMessageID(ctx context.Context, id int64, messageID *int) error {
	return nil
}

func (s *stubStore) Deactivate(ctx context.Context, id, userID int64) (bool, error) {
	return false, nil
}

func (s *stubStore) DeleteAll(ctx context.Context) error { return nil }

func (s *stubStore) ExpireDue(ctx context.Context, now time.Time) ([]listing.Listing, error) {
	return nil, nil
}

type stubMessenger struct{}

func (stubMessenger) SendToChannel(ctx context.Context, chatID int64, text string, buttons listing.Buttons, listingID int64) (int, error) {
	return 1, nil
}
func (stubMessenger) DeleteFromChannel(ctx context.Context, chatID int64, messageID int) error {
	return nil
}
func (stubMessenger) MessageExists(ctx context.Context, chatID int64, messageID int) (bool, error) {
	return true, nil
}
func (stubMessenger) SendToUser(ctx context.Context, userID int64, text string) error { return nil }

type stubPolicy struct{ mode string }

func (p *stubPolicy) Mode() string        { return p.mode }
func (p *stubPolicy) SetMode(mode string) { p.mode = mode }

type stubAdmins bool

func (a stubAdmins) IsAdmin(int64) bool { return bool(a) }

func newTestDeps() (*Deps, *stubStore) {
	store := &stubStore{}
	svc := listing.NewService(store, stubMessenger{}, &stubPolicy{mode: listing.ModerationManual},
		listing.Channels{Listings: -100200, Moderation: -100300})
	return &Deps{
		Svc:    svc,
		States: state.NewMemoryManager(),
		Policy: &stubPolicy{mode: listing.ModerationManual},
		Admins: stubAdmins(false),
	}, store
}

func TestStartCreateGuardLeavesNoSession(t *testing.T) {
	d, store := newTestDeps()
	store.hasPublished = true

	c := newFakeContext(7, "/create")
	require.NoError(t, d.StartCreate(c))

	assert.False(t, d.States.InProgress(7), "no scratch state may be created")
	assert.Contains(t, c.lastSent(), "уже есть активное объявление")
}

func TestStartCreateOpensForm(t *testing.T) {
	d, _ := newTestDeps()

	c := newFakeContext(7, "/create")
	require.NoError(t, d.StartCreate(c))

	assert.Equal(t, StateSearchType, d.States.GetState(7))
	assert.Contains(t, c.lastSent(), "тип поиска")
	require.Len(t, c.markups, 1, "search type options should be offered")
}

func TestInvalidAgeRepromptsSameState(t *testing.T) {
	d, _ := newTestDeps()
	d.States.Begin(7, StateAge, FormTTL)

	for _, bad := range []string{"abc", "0", "101", "-5"} {
		c := newFakeContext(7, bad)
		require.NoError(t, d.handleAge(c))
		assert.Equal(t, StateAge, d.States.GetState(7), "input %q must not advance", bad)
		assert.Contains(t, c.lastSent(), "корректный возраст")
	}

	c := newFakeContext(7, "25")
	require.NoError(t, d.handleAge(c))
	assert.Equal(t, StateExperience, d.States.GetState(7))
	age, ok := d.States.GetTempInt64(7, tempAge)
	require.True(t, ok)
	assert.Equal(t, int64(25), age)
}

func TestChoiceStepRejectsUnknownOption(t *testing.T) {
	d, _ := newTestDeps()
	d.States.Begin(7, StateGender, FormTTL)

	c := newFakeContext(7, "Другое")
	require.NoError(t, d.handleGender(c))
	assert.Equal(t, StateGender, d.States.GetState(7))
	assert.Contains(t, c.lastSent(), "из предложенных вариантов")

	c = newFakeContext(7, "Мужской")
	require.NoError(t, d.handleGender(c))
	assert.Equal(t, StateAge, d.States.GetState(7))
	gender, ok := d.States.GetTempString(7, tempGender)
	require.True(t, ok)
	assert.Equal(t, "Мужской", gender)
}

func TestNicknameRepromptsMatchTheFailure(t *testing.T) {
	d, _ := newTestDeps()
	d.States.Begin(7, StateNickname, FormTTL)

	c := newFakeContext(7, "   ")
	require.NoError(t, d.handleNickname(c))
	assert.Equal(t, StateNickname, d.States.GetState(7))
	assert.Contains(t, c.lastSent(), "не может быть пустым")

	c = newFakeContext(7, strings.Repeat("я", 101))
	require.NoError(t, d.handleNickname(c))
	assert.Equal(t, StateNickname, d.States.GetState(7))
	assert.Contains(t, c.lastSent(), "слишком длинный")

	c = newFakeContext(7, "Капитан")
	require.NoError(t, d.handleNickname(c))
	assert.Equal(t, StateGender, d.States.GetState(7))
}

func TestTelegramContactDerivedFromUsername(t *testing.T) {
	d, _ := newTestDeps()
	d.States.Begin(7, StateContacts, FormTTL)

	c := newFakeContext(7, "Telegram")
	require.NoError(t, d.handleContacts(c))

	contacts, ok := d.States.GetTempString(7, tempContacts)
	require.True(t, ok)
	assert.Equal(t, "@jack", contacts)
	assert.Equal(t, StateAdditionalInfo, d.States.GetState(7))
}

func TestTelegramContactWithoutUsernameReprompts(t *testing.T) {
	d, _ := newTestDeps()
	d.States.Begin(7, StateContacts, FormTTL)

	c := newFakeContext(7, "Telegram")
	c.user.Username = ""
	require.NoError(t, d.handleContacts(c))

	assert.Equal(t, StateContacts, d.States.GetState(7))
	assert.Contains(t, c.lastSent(), "не установлен username")
	require.Len(t, c.markups, 1, "the other contact kind should be offered inline")
}

func TestDiscordContactCanonicalized(t *testing.T) {
	d, _ := newTestDeps()
	d.States.Begin(7, StateContacts, FormTTL)

	c := newFakeContext(7, "Discord")
	require.NoError(t, d.handleContacts(c))
	assert.Contains(t, c.lastSent(), "Введите ваш Discord")
	assert.Equal(t, StateContacts, d.States.GetState(7))

	c = newFakeContext(7, "jack#1234")
	require.NoError(t, d.handleContacts(c))
	contacts, ok := d.States.GetTempString(7, tempContacts)
	require.True(t, ok)
	assert.Equal(t, "Discord: jack#1234", contacts)
	assert.Equal(t, StateAdditionalInfo, d.States.GetState(7))
}

func TestCancelMidFormClearsScratch(t *testing.T) {
	d, _ := newTestDeps()
	d.States.Begin(7, StateAge, FormTTL)
	d.States.SetTemp(7, tempNickname, "Капитан")

	c := newFakeContext(7, MenuCancel)
	require.NoError(t, d.handleAge(c))

	assert.False(t, d.States.InProgress(7))
	_, found := d.States.GetTempString(7, tempNickname)
	assert.False(t, found, "scratch data must be discarded")
	assert.Contains(t, c.lastSent(), "Действие отменено")
}

func TestFormSubmitCreatesListing(t *testing.T) {
	d, store := newTestDeps()
	d.States.Begin(7, StateAdditionalInfo, FormTTL)
	for key, val := range map[string]interface{}{
		tempSearchType: "party",
		tempSearchGoal: "PvE",
		tempNickname:   "Капитан",
		tempGender:     "Мужской",
		tempAge:        int64(25),
		tempExperience: int64(1200),
		tempRole:       "Рулевой",
		tempFaction:    "Торговый союз",
		tempServer:     "Европа",
		tempShipType:   "Галеон",
		tempPlatform:   "PC",
		tempContacts:   "@jack",
	} {
		d.States.SetTemp(7, key, val)
	}

	c := newFakeContext(7, "Ищу команду для вечерних рейдов")
	require.NoError(t, d.handleAdditionalInfo(c))

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, int64(7), created.UserID)
	assert.Equal(t, listing.StatusPending, created.Status)
	assert.False(t, d.States.InProgress(7), "session ends on submit")
	assert.Contains(t, c.lastSent(), "отправлено на модерацию")
}

func TestSubmitWithoutContactsAborts(t *testing.T) {
	d, store := newTestDeps()
	d.States.Begin(7, StateAdditionalInfo, FormTTL)

	c := newFakeContext(7, "Ищу команду для вечерних рейдов")
	require.NoError(t, d.handleAdditionalInfo(c))

	assert.Empty(t, store.created)
	assert.False(t, d.States.InProgress(7))
	assert.Contains(t, c.lastSent(), "контактные данные не установлены")
}
