package repository

import (
	"context"

	"registras/internal/dto"
	"registras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PositionRepository is the data access contract for positions.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type PositionRepository interface {
	Create(ctx context.Context, p *model.Position) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Position, error)
	FindByCode(ctx context.Context, code string) (*model.Position, error)
	List(ctx context.Context, filter dto.PositionFilter) ([]model.Position, int64, error)
	Update(ctx context.Context, p *model.Position) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Position, error)
	FindByCodeTx(tx *gorm.DB, code string) (*model.Position, error)
	CreateTx(tx *gorm.DB, p *model.Position) error
	UpdateTx(tx *gorm.DB, p *model.Position) error

	// UpdateActivePriceTx writes only the derived mirror column.
	UpdateActivePriceTx(tx *gorm.DB, id uuid.UUID, amount *decimal.Decimal) error

	// ListMirroredTx returns positions carrying a mirrored unit price,
	// ordered by code. Backfill walks this set.
	ListMirroredTx(tx *gorm.DB) ([]model.Position, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type positionRepo struct{ db *gorm.DB }

func NewPositionRepository(db *gorm.DB) PositionRepository { return &positionRepo{db: db} }

func (r *positionRepo) Create(ctx context.Context, p *model.Position) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *positionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Position, error) {
	var p model.Position
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *positionRepo) FindByCode(ctx context.Context, code string) (*model.Position, error) {
	var p model.Position
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *positionRepo) List(ctx context.Context, filter dto.PositionFilter) ([]model.Position, int64, error) {
	var positions []model.Position
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Position{})

	if filter.Code != "" {
		q = q.Where("code = ?", filter.Code)
	}
	if filter.Customer != "" {
		q = q.Where("customer ILIKE ?", "%"+filter.Customer+"%")
	}
	if filter.Project != "" {
		q = q.Where("project ILIKE ?", "%"+filter.Project+"%")
	}
	if filter.Q != "" {
		like := "%" + filter.Q + "%"
		q = q.Where("code ILIKE ? OR name ILIKE ? OR customer ILIKE ? OR project ILIKE ?",
			like, like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&positions).Error
	return positions, total, translate(err)
}

func (r *positionRepo) Update(ctx context.Context, p *model.Position) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

// Delete removes the position; the FK constraint cascades to its price lines.
func (r *positionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Position{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *positionRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Position, error) {
	var p model.Position
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *positionRepo) FindByCodeTx(tx *gorm.DB, code string) (*model.Position, error) {
	var p model.Position
	if err := tx.Where("code = ?", code).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *positionRepo) CreateTx(tx *gorm.DB, p *model.Position) error {
	return translate(tx.Create(p).Error)
}

func (r *positionRepo) UpdateTx(tx *gorm.DB, p *model.Position) error {
	return translate(tx.Save(p).Error)
}

func (r *positionRepo) UpdateActivePriceTx(tx *gorm.DB, id uuid.UUID, amount *decimal.Decimal) error {
	return translate(tx.Model(&model.Position{}).
		Where("id = ?", id).
		Update("active_unit_price", amount).Error)
}

func (r *positionRepo) ListMirroredTx(tx *gorm.DB) ([]model.Position, error) {
	var positions []model.Position
	err := tx.
		Where("active_unit_price IS NOT NULL").
		Order("code ASC").
		Find(&positions).Error
	return positions, translate(err)
}

func (r *positionRepo) DB() *gorm.DB { return r.db }
