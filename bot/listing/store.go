package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"log/slog"

	"github.com/sotlfg/lfgbot/core/logger"
)

const pqUniqueViolation = "23505"

// SQLStore persists listings in Postgres via sqlx.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

const insertListing = `
INSERT INTO listings (
	user_id, nickname, gender, age, experience, role, faction, server,
	ship_type, platform, additional_info, contacts, search_type, search_goal,
	moderation_type, status, rejection_reason, created_at, expires_at,
	is_active, message_id
) VALUES (
	:user_id, :nickname, :gender, :age, :experience, :role, :faction, :server,
	:ship_type, :platform, :additional_info, :contacts, :search_type, :search_goal,
	:moderation_type, :status, :rejection_reason, :created_at, :expires_at,
	:is_active, :message_id
) RETURNING id`

// Create inserts a listing inside a transaction. The active-listing guard is
// checked first; the partial unique index backs it up under concurrency.
// When publish is non-nil it runs after the row exists (with the assigned ID)
// and before commit, so a failed channel send rolls the insert back.
func (s *SQLStore) Create(ctx context.Context, l *Listing, publish func(*Listing) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing: begin create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var active int
	err = tx.GetContext(ctx, &active,
		`SELECT COUNT(*) FROM listings WHERE user_id = $1 AND is_active AND status <> $2`,
		l.UserID, StatusRejected)
	if err != nil {
		return fmt.Errorf("listing: active count: %w", err)
	}
	if active > 0 {
		return ErrActiveExists
	}

	rows, err := tx.NamedQuery(insertListing, l)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrActiveExists
		}
		return fmt.Errorf("listing: insert: %w", err)
	}
	if rows.Next() {
		if err := rows.Scan(&l.ID); err != nil {
			rows.Close()
			return fmt.Errorf("listing: scan id: %w", err)
		}
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("listing: insert close: %w", err)
	}

	if publish != nil {
		if err := publish(l); err != nil {
			return err
		}
	}

	// The publish hook may set status or message_id on the new row.
	_, err = tx.ExecContext(ctx,
		`UPDATE listings SET status = $1, message_id = $2 WHERE id = $3`,
		l.Status, l.MessageID, l.ID)
	if err != nil {
		return fmt.Errorf("listing: finalize insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("listing: commit create: %w", err)
	}

	logger.Debug(ctx, "service.listings", "listing.stored",
		slog.String("status", "ok"),
		slog.Int64("listing_id", l.ID),
		slog.Int64("user_id", l.UserID),
		slog.String("listing_status", l.Status),
	)
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// GetByID fetches a single listing.
func (s *SQLStore) GetByID(ctx context.Context, id int64) (*Listing, error) {
	var l Listing
	err := s.db.GetContext(ctx, &l, `SELECT * FROM listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("listing: get %d: %w", id, err)
	}
	return &l, nil
}

// ActiveApprovedByUser returns the caller's live published listings.
func (s *SQLStore) ActiveApprovedByUser(ctx context.Context, userID int64) ([]Listing, error) {
	var out []Listing
	err := s.db.SelectContext(ctx, &out,
		`SELECT * FROM listings WHERE user_id = $1 AND is_active AND status = $2 ORDER BY id`,
		userID, StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("listing: select active for user %d: %w", userID, err)
	}
	return out, nil
}

// HasActivePublished reports whether the user already has an approved listing
// with a channel message. Used as the friendly guard before opening the form.
func (s *SQLStore) HasActivePublished(ctx context.Context, userID int64) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM listings
		 WHERE user_id = $1 AND is_active AND status = $2 AND message_id IS NOT NULL`,
		userID, StatusApproved)
	if err != nil {
		return false, fmt.Errorf("listing: active published count: %w", err)
	}
	return n > 0, nil
}

// UpdateStatus transitions a listing's status, recording an optional rejection reason.
func (s *SQLStore) UpdateStatus(ctx context.Context, id int64, status string, reason *string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET status = $1, rejection_reason = $2 WHERE id = $3`,
		status, reason, id)
	if err != nil {
		return fmt.Errorf("listing: update status %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMessageID records (or clears) the published channel message ID.
func (s *SQLStore) SetMessageID(ctx context.Context, id int64, messageID *int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE listings SET message_id = $1 WHERE id = $2`, messageID, id)
	if err != nil {
		return fmt.Errorf("listing: set message id %d: %w", id, err)
	}
	return nil
}

// Deactivate turns off an active listing owned by the given user.
// It reports whether a row was actually affected.
func (s *SQLStore) Deactivate(ctx context.Context, id, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET is_active = FALSE WHERE id = $1 AND user_id = $2 AND is_active`,
		id, userID)
	if err != nil {
		return false, fmt.Errorf("listing: deactivate %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("listing: deactivate %d rows: %w", id, err)
	}
	return n > 0, nil
}

// DeactivateAllForUser turns off every active listing of the user. Used by
// the demo seeder to make room for its fixture row.
func (s *SQLStore) DeactivateAllForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET is_active = FALSE WHERE user_id = $1 AND is_active`, userID)
	if err != nil {
		return 0, fmt.Errorf("listing: deactivate all for %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("listing: deactivate all for %d rows: %w", userID, err)
	}
	return n, nil
}

// DeleteAll removes every listing and resets identity numbering.
func (s *SQLStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE listings RESTART IDENTITY`); err != nil {
		return fmt.Errorf("listing: delete all: %w", err)
	}
	return nil
}

// ExpireDue deactivates listings past their expiry and returns the affected
// rows so the caller can clean up channel messages.
func (s *SQLStore) ExpireDue(ctx context.Context, now time.Time) ([]Listing, error) {
	var out []Listing
	err := s.db.SelectContext(ctx, &out,
		`UPDATE listings SET is_active = FALSE
		 WHERE is_active AND expires_at IS NOT NULL AND expires_at <= $1
		 RETURNING *`, now)
	if err != nil {
		return nil, fmt.Errorf("listing: expire due: %w", err)
	}
	return out, nil
}
