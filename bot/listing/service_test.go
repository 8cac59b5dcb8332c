package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	items  map[int64]*Listing
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[int64]*Listing), nextID: 1}
}

func (f *fakeStore) activeCount(userID int64) int {
	n := 0
	for _, l := range f.items {
		if l.UserID == userID && l.IsActive && l.Status != StatusRejected {
			n++
		}
	}
	return n
}

func (f *fakeStore) Create(ctx context.Context, l *Listing, publish func(*Listing) error) error {
	if f.activeCount(l.UserID) > 0 {
		return ErrActiveExists
	}
	l.ID = f.nextID
	if publish != nil {
		if err := publish(l); err != nil {
			return err
		}
	}
	f.nextID++
	cp := *l
	f.items[l.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Listing, error) {
	l, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) ActiveApprovedByUser(ctx context.Context, userID int64) ([]Listing, error) {
	var out []Listing
	for _, l := range f.items {
		if l.UserID == userID && l.IsActive && l.Status == StatusApproved {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeStore) HasActivePublished(ctx context.Context, userID int64) (bool, error) {
	for _, l := range f.items {
		if l.UserID == userID && l.IsActive && l.Status == StatusApproved && l.MessageID != nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id int64, status string, reason *string) error {
	l, ok := f.items[id]
	if !ok {
		return ErrNotFound
	}
	l.Status = status
	l.RejectionReason = reason
	return nil
}

func (f *fakeStore) SetMessageID(ctx context.Context, id int64, messageID *int) error {
	l, ok := f.items[id]
	if !ok {
		return ErrNotFound
	}
	l.MessageID = messageID
	return nil
}

func (f *fakeStore) Deactivate(ctx context.Context, id, userID int64) (bool, error) {
	l, ok := f.items[id]
	if !ok || l.UserID != userID || !l.IsActive {
		return false, nil
	}
	l.IsActive = false
	return true, nil
}

func (f *fakeStore) DeleteAll(ctx context.Context) error {
	f.items = make(map[int64]*Listing)
	f.nextID = 1
	return nil
}

func (f *fakeStore) ExpireDue(ctx context.Context, now time.Time) ([]Listing, error) {
	var out []Listing
	for _, l := range f.items {
		if l.IsActive && l.ExpiresAt != nil && !l.ExpiresAt.After(now) {
			l.IsActive = false
			out = append(out, *l)
		}
	}
	return out, nil
}

type sentMessage struct {
	chatID  int64
	text    string
	buttons Buttons
}

type fakeMessenger struct {
	sent     []sentMessage
	deleted  []int
	userMsgs map[int64][]string

	nextMsgID  int
	sendErr    error
	existsResp bool
	existsErr  error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{userMsgs: make(map[int64][]string), nextMsgID: 100, existsResp: true}
}

func (f *fakeMessenger) SendToChannel(ctx context.Context, chatID int64, text string, buttons Buttons, listingID int64) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, buttons: buttons})
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeMessenger) DeleteFromChannel(ctx context.Context, chatID int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeMessenger) MessageExists(ctx context.Context, chatID int64, messageID int) (bool, error) {
	return f.existsResp, f.existsErr
}

func (f *fakeMessenger) SendToUser(ctx context.Context, userID int64, text string) error {
	f.userMsgs[userID] = append(f.userMsgs[userID], text)
	return nil
}

type fixedPolicy string

func (p fixedPolicy) Mode() string { return string(p) }

var testChannels = Channels{Listings: -100200, Moderation: -100300}

func validListing(userID int64) *Listing {
	return &Listing{
		UserID:         userID,
		Nickname:       "Капитан",
		Gender:         "Мужской",
		Age:            25,
		Experience:     1200,
		Role:           "Рулевой",
		Faction:        "Торговый союз",
		Server:         "Европа",
		ShipType:       "Галеон",
		Platform:       "PC",
		AdditionalInfo: "Ищу команду для вечерних рейдов",
		Contacts:       "@captain",
		SearchType:     "party",
		SearchGoal:     "PvE",
	}
}

func newTestService(mode string) (*Service, *fakeStore, *fakeMessenger) {
	store := newFakeStore()
	msgr := newFakeMessenger()
	svc := NewService(store, msgr, fixedPolicy(mode), testChannels)
	return svc, store, msgr
}

func TestCreateAutoPublishesImmediately(t *testing.T) {
	svc, store, msgr := newTestService(ModerationAuto)

	published, err := svc.Create(context.Background(), validListing(1))
	require.NoError(t, err)
	assert.True(t, published)

	stored := store.items[1]
	require.NotNil(t, stored)
	assert.Equal(t, StatusApproved, stored.Status)
	require.NotNil(t, stored.MessageID)
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, testChannels.Listings, msgr.sent[0].chatID)
	assert.Equal(t, ButtonsManage, msgr.sent[0].buttons)
	require.NotNil(t, stored.ExpiresAt)
	// party listings live for one day
	assert.WithinDuration(t, stored.CreatedAt.Add(24*time.Hour), *stored.ExpiresAt, time.Second)
}

func TestCreateManualGoesThroughModeration(t *testing.T) {
	svc, store, msgr := newTestService(ModerationManual)

	published, err := svc.Create(context.Background(), validListing(1))
	require.NoError(t, err)
	assert.False(t, published)

	stored := store.items[1]
	require.NotNil(t, stored)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Nil(t, stored.MessageID)
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, testChannels.Moderation, msgr.sent[0].chatID)
	assert.Equal(t, ButtonsModeration, msgr.sent[0].buttons)
}

func TestCreateAutoFlaggedFallsBackToModeration(t *testing.T) {
	svc, store, msgr := newTestService(ModerationAuto)

	l := validListing(1)
	l.AdditionalInfo = "Ищу команду, sell cheap gold here"

	published, err := svc.Create(context.Background(), l)
	require.NoError(t, err)
	assert.False(t, published)

	stored := store.items[1]
	require.NotNil(t, stored)
	assert.Equal(t, StatusPending, stored.Status)
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, testChannels.Moderation, msgr.sent[0].chatID)
	assert.Equal(t, ButtonsModeration, msgr.sent[0].buttons)
}

func TestCreateRejectsSecondActiveListing(t *testing.T) {
	svc, _, _ := newTestService(ModerationManual)

	_, err := svc.Create(context.Background(), validListing(1))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validListing(1))
	assert.ErrorIs(t, err, ErrActiveExists)
}

func TestCreatePublishFailureKeepsNothing(t *testing.T) {
	svc, store, msgr := newTestService(ModerationAuto)
	msgr.sendErr = errors.New("boom")

	_, err := svc.Create(context.Background(), validListing(1))
	require.Error(t, err)
	assert.Empty(t, store.items)
}

func TestCreateValidatesBeforeStoring(t *testing.T) {
	svc, store, _ := newTestService(ModerationManual)

	l := validListing(1)
	l.Contacts = "just a name"

	_, err := svc.Create(context.Background(), l)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "contacts", verr.Field)
	assert.Empty(t, store.items)
}

func TestApprovePublishesAndNotifiesOwner(t *testing.T) {
	svc, store, msgr := newTestService(ModerationManual)
	_, err := svc.Create(context.Background(), validListing(7))
	require.NoError(t, err)
	msgr.sent = nil

	require.NoError(t, svc.Approve(context.Background(), 1))

	stored := store.items[1]
	assert.Equal(t, StatusApproved, stored.Status)
	require.NotNil(t, stored.MessageID)
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, testChannels.Listings, msgr.sent[0].chatID)
	require.Len(t, msgr.userMsgs[7], 1)
	assert.Contains(t, msgr.userMsgs[7][0], "одобрено")
}

func TestApproveStaysRetryableWhenPublishFails(t *testing.T) {
	svc, store, msgr := newTestService(ModerationManual)
	_, err := svc.Create(context.Background(), validListing(7))
	require.NoError(t, err)
	msgr.sent = nil

	msgr.sendErr = errors.New("telegram: down")
	require.Error(t, svc.Approve(context.Background(), 1))

	// A failed publish must not commit the transition.
	stored := store.items[1]
	assert.Equal(t, StatusPending, stored.Status)
	assert.Nil(t, stored.MessageID)
	assert.Empty(t, msgr.userMsgs)

	msgr.sendErr = nil
	require.NoError(t, svc.Approve(context.Background(), 1))
	assert.Equal(t, StatusApproved, store.items[1].Status)
	require.NotNil(t, store.items[1].MessageID)
	require.Len(t, msgr.userMsgs[7], 1)
}

func TestApproveTwiceIsRejected(t *testing.T) {
	svc, _, msgr := newTestService(ModerationManual)
	_, err := svc.Create(context.Background(), validListing(7))
	require.NoError(t, err)

	require.NoError(t, svc.Approve(context.Background(), 1))
	msgr.sent = nil
	msgr.userMsgs = map[int64][]string{}

	assert.ErrorIs(t, svc.Approve(context.Background(), 1), ErrAlreadyDecided)
	assert.Empty(t, msgr.sent)
	assert.Empty(t, msgr.userMsgs)
}

func TestDeclineRecordsReasonAndNotifiesOnce(t *testing.T) {
	svc, store, msgr := newTestService(ModerationManual)
	_, err := svc.Create(context.Background(), validListing(7))
	require.NoError(t, err)

	require.NoError(t, svc.Decline(context.Background(), 1))

	stored := store.items[1]
	assert.Equal(t, StatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, DeclineReasons[0], *stored.RejectionReason)
	require.Len(t, msgr.userMsgs[7], 1)
	assert.Contains(t, msgr.userMsgs[7][0], DeclineReasons[0])

	msgr.userMsgs = map[int64][]string{}
	assert.ErrorIs(t, svc.Decline(context.Background(), 1), ErrAlreadyDecided)
	assert.Empty(t, msgr.userMsgs)
}

func TestDeclineFreesSlotForNewListing(t *testing.T) {
	svc, _, _ := newTestService(ModerationManual)
	_, err := svc.Create(context.Background(), validListing(7))
	require.NoError(t, err)

	require.NoError(t, svc.Decline(context.Background(), 1))

	_, err = svc.Create(context.Background(), validListing(7))
	assert.NoError(t, err)
}

func approvedPublished(t *testing.T, svc *Service, msgr *fakeMessenger, userID int64) {
	t.Helper()
	_, err := svc.Create(context.Background(), validListing(userID))
	require.NoError(t, err)
	require.NoError(t, svc.Approve(context.Background(), 1))
	msgr.sent = nil
	msgr.deleted = nil
}

func TestRefreshRepostsThenDeletesOld(t *testing.T) {
	svc, store, msgr := newTestService(ModerationManual)
	approvedPublished(t, svc, msgr, 7)
	oldID := *store.items[1].MessageID

	require.NoError(t, svc.Refresh(context.Background(), 1, 7))

	require.Len(t, msgr.sent, 1)
	assert.Equal(t, []int{oldID}, msgr.deleted)
	require.NotNil(t, store.items[1].MessageID)
	assert.NotEqual(t, oldID, *store.items[1].MessageID)
}

func TestRefreshMissingMessageClearsStoredID(t *testing.T) {
	svc, store, msgr := newTestService(ModerationManual)
	approvedPublished(t, svc, msgr, 7)
	msgr.existsResp = false

	err := svc.Refresh(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrMessageMissing)
	assert.Nil(t, store.items[1].MessageID)
	assert.Empty(t, msgr.sent)
}

func TestRefreshIsOwnerScoped(t *testing.T) {
	svc, _, msgr := newTestService(ModerationManual)
	approvedPublished(t, svc, msgr, 7)

	assert.ErrorIs(t, svc.Refresh(context.Background(), 1, 8), ErrNotFound)
	assert.Empty(t, msgr.sent)
}

func TestDeleteDeactivatesAndRemovesPost(t *testing.T) {
	svc, store, msgr := newTestService(ModerationManual)
	approvedPublished(t, svc, msgr, 7)
	msgID := *store.items[1].MessageID

	require.NoError(t, svc.Delete(context.Background(), 1, 7))

	assert.False(t, store.items[1].IsActive)
	assert.Equal(t, []int{msgID}, msgr.deleted)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	svc, store, msgr := newTestService(ModerationManual)
	approvedPublished(t, svc, msgr, 7)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 8), ErrNotFound)
	assert.True(t, store.items[1].IsActive)
	assert.Empty(t, msgr.deleted)
}

func TestExpireSweepReapsDueListings(t *testing.T) {
	svc, store, msgr := newTestService(ModerationManual)
	approvedPublished(t, svc, msgr, 7)

	past := time.Now().Add(-time.Hour)
	store.items[1].ExpiresAt = &past
	msgID := *store.items[1].MessageID

	n, err := svc.ExpireSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, store.items[1].IsActive)
	assert.Equal(t, []int{msgID}, msgr.deleted)
}

func TestClearAllEmptiesStore(t *testing.T) {
	svc, store, _ := newTestService(ModerationManual)
	_, err := svc.Create(context.Background(), validListing(7))
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(context.Background()))
	assert.Empty(t, store.items)
}
