package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/rental-console/internal/domain"
)

// Storage is a string key/value store scoped to one namespace, shaped after
// the browser Web Storage API. Implementations must be safe for concurrent use.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// SQLStorage persists items in the storage_items table.
type SQLStorage struct {
	DB        *gorm.DB
	Scope     string
	Namespace string
}

// NewSQLStorage returns a storage view over (scope, namespace).
func NewSQLStorage(db *gorm.DB, scope, namespace string) *SQLStorage {
	return &SQLStorage{DB: db, Scope: scope, Namespace: namespace}
}

// GetItem returns the stored value and whether it exists.
func (s *SQLStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var it domain.StorageItem
	err := s.DB.WithContext(ctx).
		Where("scope = ? AND namespace = ? AND key = ?", s.Scope, s.Namespace, key).
		First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return it.Value, true, nil
}

// SetItem inserts or overwrites key.
func (s *SQLStorage) SetItem(ctx context.Context, key, value string) error {
	it := domain.StorageItem{
		Scope:     s.Scope,
		Namespace: s.Namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "namespace"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&it).Error
}

// RemoveItem deletes key. Missing keys are not an error.
func (s *SQLStorage) RemoveItem(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).
		Where("scope = ? AND namespace = ? AND key = ?", s.Scope, s.Namespace, key).
		Delete(&domain.StorageItem{}).Error
}

// Clear deletes every item of the namespace.
func (s *SQLStorage) Clear(ctx context.Context) error {
	return s.DB.WithContext(ctx).
		Where("scope = ? AND namespace = ?", s.Scope, s.Namespace).
		Delete(&domain.StorageItem{}).Error
}

// PurgeStaleSessions removes session-scoped items not written since cutoff.
// It returns the number of rows deleted.
func PurgeStaleSessions(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("scope = ? AND updated_at < ?", domain.ScopeSession, cutoff).
		Delete(&domain.StorageItem{})
	return res.RowsAffected, res.Error
}
