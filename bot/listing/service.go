package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/sotlfg/lfgbot/core/logger"
)

// Sentinel errors surfaced by the service.
var (
	// ErrActiveExists means the user already holds an active non-rejected listing.
	ErrActiveExists = errors.New("listing: user already has an active listing")
	// ErrNotFound means the listing does not exist or is not actionable by the caller.
	ErrNotFound = errors.New("listing: not found")
	// ErrAlreadyDecided means a moderation action targeted a non-pending listing.
	ErrAlreadyDecided = errors.New("listing: moderation already decided")
	// ErrMessageMissing means the published channel message no longer exists.
	ErrMessageMissing = errors.New("listing: channel message missing")
)

// DeclineReasons is the fixed list of moderation decline reasons.
// The first entry is used unconditionally on decline.
var DeclineReasons = []string{
	"Некорректно заполнены контактные данные",
	"Неподходящая дополнительная информация",
	"Нарушение правил сообщества",
	"Недостоверная информация",
}

// Buttons selects which control keyboard accompanies a channel message.
type Buttons int

const (
	ButtonsNone Buttons = iota
	ButtonsManage
	ButtonsModeration
)

// Store is the persistence port of the listing lifecycle.
type Store interface {
	Create(ctx context.Context, l *Listing, publish func(*Listing) error) error
	GetByID(ctx context.Context, id int64) (*Listing, error)
	ActiveApprovedByUser(ctx context.Context, userID int64) ([]Listing, error)
	HasActivePublished(ctx context.Context, userID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status string, reason *string) error
	SetMessageID(ctx context.Context, id int64, messageID *int) error
	Deactivate(ctx context.Context, id, userID int64) (bool, error)
	DeleteAll(ctx context.Context) error
	ExpireDue(ctx context.Context, now time.Time) ([]Listing, error)
}

// Messenger is the outbound transport port used by the lifecycle.
type Messenger interface {
	SendToChannel(ctx context.Context, chatID int64, text string, buttons Buttons, listingID int64) (int, error)
	DeleteFromChannel(ctx context.Context, chatID int64, messageID int) error
	MessageExists(ctx context.Context, chatID int64, messageID int) (bool, error)
	SendToUser(ctx context.Context, userID int64, text string) error
}

// PolicyReader exposes the process-wide moderation mode.
type PolicyReader interface {
	Mode() string
}

// Channels names the two operational channel destinations.
type Channels struct {
	Listings   int64
	Moderation int64
}

// Service drives the listing lifecycle: creation, moderation, management.
type Service struct {
	store    Store
	msgr     Messenger
	policy   PolicyReader
	channels Channels
	now      func() time.Time
}

// NewService wires the lifecycle service from its ports.
func NewService(store Store, msgr Messenger, policy PolicyReader, channels Channels) *Service {
	return &Service{
		store:    store,
		msgr:     msgr,
		policy:   policy,
		channels: channels,
		now:      time.Now,
	}
}

// HasActivePublished reports whether the user already holds a published listing.
func (s *Service) HasActivePublished(ctx context.Context, userID int64) (bool, error) {
	return s.store.HasActivePublished(ctx, userID)
}

// ActiveApprovedByUser lists the caller's live published listings.
func (s *Service) ActiveApprovedByUser(ctx context.Context, userID int64) ([]Listing, error) {
	return s.store.ActiveApprovedByUser(ctx, userID)
}

// Create persists a completed form payload and routes it per the moderation
// policy. It returns whether the listing went live immediately.
//
// Under auto policy the row is approved and published inside the creation
// transaction; a failed channel send rolls everything back. Under manual
// policy the row stays pending and a review card goes to the moderation
// channel, also inside the transaction.
func (s *Service) Create(ctx context.Context, l *Listing) (bool, error) {
	now := s.now()
	l.CreatedAt = now
	l.IsActive = true
	l.ModerationType = s.policy.Mode()
	l.MessageID = nil
	l.RejectionReason = nil

	if l.ExpiresAt == nil || !l.ExpiresAt.After(now) {
		dur := 7 * 24 * time.Hour
		if st, ok := SearchTypeByKey(l.SearchType); ok {
			dur = st.Duration
		}
		exp := now.Add(dur)
		l.ExpiresAt = &exp
	}

	if verr := l.Validate(); verr != nil {
		return false, verr
	}

	auto := l.ModerationType == ModerationAuto
	if auto {
		// Flagged content goes to the human queue even under auto policy.
		if pass, reason := l.AutoCheck(); !pass {
			auto = false
			logger.Info(ctx, "service.listings", "listing.autocheck.flagged",
				slog.String("status", "ok"),
				slog.Int64("user_id", l.UserID),
				slog.String("reason", reason),
			)
		}
	}
	if auto {
		l.Status = StatusApproved
	} else {
		l.Status = StatusPending
	}

	publish := func(stored *Listing) error {
		if auto {
			msgID, err := s.msgr.SendToChannel(ctx, s.channels.Listings, FormatListing(stored), ButtonsManage, stored.ID)
			if err != nil {
				return fmt.Errorf("listing: publish: %w", err)
			}
			stored.MessageID = &msgID
			return nil
		}
		_, err := s.msgr.SendToChannel(ctx, s.channels.Moderation, FormatModerationCard(stored), ButtonsModeration, stored.ID)
		if err != nil {
			return fmt.Errorf("listing: moderation card: %w", err)
		}
		return nil
	}

	if err := s.store.Create(ctx, l, publish); err != nil {
		logger.Warn(ctx, "service.listings", "listing.create.failed",
			slog.String("status", "fail"),
			slog.Int64("user_id", l.UserID),
			slog.String("err", err.Error()),
		)
		return false, err
	}

	logger.Info(ctx, "service.listings", "listing.created",
		slog.String("status", "ok"),
		slog.Int64("listing_id", l.ID),
		slog.Int64("user_id", l.UserID),
		slog.String("listing_status", l.Status),
		slog.String("policy", l.ModerationType),
	)
	return auto, nil
}

// Approve transitions a pending listing to approved, publishes it, and
// notifies the owner. A non-pending listing yields ErrAlreadyDecided.
func (s *Service) Approve(ctx context.Context, id int64) error {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.Status != StatusPending {
		return ErrAlreadyDecided
	}

	// Publish before persisting the transition, so a failed send leaves
	// the listing pending and the approve action retryable.
	l.Status = StatusApproved
	msgID, err := s.msgr.SendToChannel(ctx, s.channels.Listings, FormatListing(l), ButtonsManage, l.ID)
	if err != nil {
		return fmt.Errorf("listing: approve publish: %w", err)
	}

	if err := s.store.UpdateStatus(ctx, id, StatusApproved, nil); err != nil {
		return err
	}
	if err := s.store.SetMessageID(ctx, id, &msgID); err != nil {
		return err
	}

	if err := s.msgr.SendToUser(ctx, l.UserID, "✅ Ваше объявление было одобрено и опубликовано!"); err != nil {
		logger.Warn(ctx, "service.moderation", "listing.approve.notify_failed",
			slog.String("status", "fail"),
			slog.Int64("listing_id", id),
			slog.String("err", err.Error()),
		)
	}

	logger.Info(ctx, "service.moderation", "listing.approved",
		slog.String("status", "ok"),
		slog.Int64("listing_id", id),
		slog.Int64("user_id", l.UserID),
	)
	return nil
}

// Decline transitions a pending listing to rejected and notifies the owner
// with the recorded reason. A non-pending listing yields ErrAlreadyDecided
// and the owner is not notified again.
func (s *Service) Decline(ctx context.Context, id int64) error {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.Status != StatusPending {
		return ErrAlreadyDecided
	}

	reason := DeclineReasons[0]
	if err := s.store.UpdateStatus(ctx, id, StatusRejected, &reason); err != nil {
		return err
	}

	text := fmt.Sprintf(
		"❌ Ваше объявление было отклонено.\n\nПричина: %s\n\nВы можете создать новое объявление с помощью команды /create",
		reason,
	)
	if err := s.msgr.SendToUser(ctx, l.UserID, text); err != nil {
		logger.Warn(ctx, "service.moderation", "listing.decline.notify_failed",
			slog.String("status", "fail"),
			slog.Int64("listing_id", id),
			slog.String("err", err.Error()),
		)
	}

	logger.Info(ctx, "service.moderation", "listing.declined",
		slog.String("status", "ok"),
		slog.Int64("listing_id", id),
		slog.Int64("user_id", l.UserID),
	)
	return nil
}

// Refresh re-posts the caller's published listing. The new message goes out
// first; only then is the old one deleted (best-effort) and the stored
// message ID replaced, so a failed delete never leaves the listing unpublished.
// When the old message is already gone the stored ID is cleared and
// ErrMessageMissing is returned without posting anything.
func (s *Service) Refresh(ctx context.Context, id, requesterID int64) error {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.UserID != requesterID || !l.IsActive || l.Status != StatusApproved {
		return ErrNotFound
	}

	if l.MessageID == nil {
		return ErrMessageMissing
	}
	exists, err := s.msgr.MessageExists(ctx, s.channels.Listings, *l.MessageID)
	if err != nil {
		return fmt.Errorf("listing: refresh probe: %w", err)
	}
	if !exists {
		if err := s.store.SetMessageID(ctx, id, nil); err != nil {
			return err
		}
		return ErrMessageMissing
	}

	newID, err := s.msgr.SendToChannel(ctx, s.channels.Listings, FormatListing(l), ButtonsManage, l.ID)
	if err != nil {
		return fmt.Errorf("listing: refresh publish: %w", err)
	}

	if err := s.msgr.DeleteFromChannel(ctx, s.channels.Listings, *l.MessageID); err != nil {
		logger.Warn(ctx, "service.listings", "listing.refresh.old_delete_failed",
			slog.String("status", "fail"),
			slog.Int64("listing_id", id),
			slog.String("err", err.Error()),
		)
	}

	if err := s.store.SetMessageID(ctx, id, &newID); err != nil {
		return err
	}

	logger.Info(ctx, "service.listings", "listing.refreshed",
		slog.String("status", "ok"),
		slog.Int64("listing_id", id),
		slog.Int64("user_id", requesterID),
	)
	return nil
}

// Delete deactivates the caller's active listing and removes its channel
// message best-effort. Requests against non-owned, inactive, or unknown
// listings return ErrNotFound without mutating anything.
func (s *Service) Delete(ctx context.Context, id, requesterID int64) error {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.UserID != requesterID || !l.IsActive {
		return ErrNotFound
	}

	ok, err := s.store.Deactivate(ctx, id, requesterID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	if l.MessageID != nil {
		if err := s.msgr.DeleteFromChannel(ctx, s.channels.Listings, *l.MessageID); err != nil {
			logger.Warn(ctx, "service.listings", "listing.delete.channel_failed",
				slog.String("status", "fail"),
				slog.Int64("listing_id", id),
				slog.String("err", err.Error()),
			)
		}
	}

	logger.Info(ctx, "service.listings", "listing.deleted",
		slog.String("status", "ok"),
		slog.Int64("listing_id", id),
		slog.Int64("user_id", requesterID),
	)
	return nil
}

// ClearAll hard-deletes every listing and resets identity numbering.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	logger.Info(ctx, "service.listings", "listing.cleared_all",
		slog.String("status", "ok"),
	)
	return nil
}

// ExpireSweep deactivates listings past their expiry and removes their
// channel messages best-effort. It returns how many listings were reaped.
func (s *Service) ExpireSweep(ctx context.Context) (int, error) {
	due, err := s.store.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for i := range due {
		l := &due[i]
		if l.MessageID == nil {
			continue
		}
		if err := s.msgr.DeleteFromChannel(ctx, s.channels.Listings, *l.MessageID); err != nil {
			logger.Warn(ctx, "service.listings", "listing.expire.channel_failed",
				slog.String("status", "fail"),
				slog.Int64("listing_id", l.ID),
				slog.String("err", err.Error()),
			)
		}
	}
	if len(due) > 0 {
		logger.Info(ctx, "service.listings", "listing.expired",
			slog.String("status", "ok"),
			slog.Int("count", len(due)),
		)
	}
	return len(due), nil
}
