package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord captures one mutation of a position or price line.
// Records are immutable and never consulted by pricing logic; they exist so
// that a price dispute can be traced back to who changed what and when.
// Before/After hold JSON snapshots of the entity around the mutation.
type AuditRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Entity   string    `gorm:"not null;index:idx_audit_entity,priority:1"` // position | price_line
	EntityID uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	Action   string    `gorm:"not null"` // create | update | demote | delete
	Before   *string   `gorm:"type:jsonb"`
	After    *string   `gorm:"type:jsonb"`
	Actor    *string

	CreatedAt time.Time
}
