package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/rental-console/internal/domain"
)

// ReplayKey identifies one replayable ticket creation. A key is only
// meaningful inside the console session that sent it.
type ReplayKey struct {
	UserID    string
	SessionID string
	Key       string
}

func (k ReplayKey) valid() bool {
	return strings.TrimSpace(k.SessionID) != "" && k.Key != ""
}

// GetIdempotency returns the record for k that is still live at now, or
// ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, k ReplayKey, now time.Time) (*domain.Idempotency, error) {
	if !k.valid() {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where(map[string]any{"user_id": k.UserID, "session_id": k.SessionID, "key": k.Key}).
		Where("expires_at > ?", now).
		Take(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency stores the ticket created under k. It expires ttl after
// now. A second record for the same k yields ErrDuplicate.
func CreateIdempotency(ctx context.Context, db *gorm.DB, k ReplayKey, ticketID string, status int, now time.Time, ttl time.Duration) (*domain.Idempotency, error) {
	if !k.valid() {
		return nil, errors.New("idempotency: session id and key are required")
	}
	now = now.UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		UserID:    k.UserID,
		SessionID: k.SessionID,
		Key:       k.Key,
		TicketID:  ticketID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if uniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeIdempotency deletes records that expired at or before now.
func PurgeIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// uniqueViolation recognises constraint errors; the pure-Go sqlite driver
// reports them as text rather than gorm.ErrDuplicatedKey.
func uniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed: unique")
}
