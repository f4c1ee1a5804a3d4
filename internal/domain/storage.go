// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Storage scopes. Session items live until the console session ends;
// durable items survive across sessions (the read watermark).
const (
	ScopeSession = "session"
	ScopeDurable = "durable"
)

// StorageItem is a single key/value pair of the persisted console state,
// keyed by (scope, namespace, key). Namespace is the session id for session
// items and the username for durable items.
type StorageItem struct {
	Scope     string    `gorm:"type:varchar(16);primaryKey"`
	Namespace string    `gorm:"type:varchar(128);primaryKey"`
	Key       string    `gorm:"type:varchar(255);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName implements the GORM tabler interface.
func (StorageItem) TableName() string { return "storage_items" }

// Idempotency represents a recorded result of a previously processed ticket
// creation, keyed by (user_id, session_id, key). It enables safe retries of
// POST requests by returning the originally created ticket without creating
// a second one.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_session_key,priority:1"`
	SessionID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_session_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_session_key,priority:3"`
	TicketID  string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
