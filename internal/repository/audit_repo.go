package repository

import (
	"context"

	"registras/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditRepository persists the append-only mutation log. Nothing in the
// pricing path reads it back; the single consumer is the audit endpoint.
type AuditRepository interface {
	Append(ctx context.Context, rec *model.AuditRecord) error
	ListByEntity(ctx context.Context, entityID uuid.UUID, page, limit int) ([]model.AuditRecord, int64, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Append(ctx context.Context, rec *model.AuditRecord) error {
	return translate(r.db.WithContext(ctx).Create(rec).Error)
}

// ListByEntity returns the newest records first.
func (r *auditRepo) ListByEntity(ctx context.Context, entityID uuid.UUID, page, limit int) ([]model.AuditRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.AuditRecord{}).
		Where("entity_id = ?", entityID).
		Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var rows []model.AuditRecord
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, translate(err)
	}

	return rows, total, nil
}
