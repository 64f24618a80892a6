package repository

import (
	"context"

	"registras/internal/dto"
	"registras/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lineOrder is the stable ordering every line listing uses: grouped by unit,
// fixed points after intervals, then by bounds, precedence, and recency.
const lineOrder = "unit ASC, is_fixed ASC, qty_from ASC NULLS FIRST, fixed_qty ASC NULLS FIRST, priority ASC, created_at DESC"

// PriceLineRepository is the data access contract for price lines.
type PriceLineRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.PriceLine, error)
	ListByPosition(ctx context.Context, positionID uuid.UUID, filter dto.PriceLineFilter) ([]model.PriceLine, error)

	// Used inside transactions — callers must pass the tx instance.
	CreateTx(tx *gorm.DB, l *model.PriceLine) error
	UpdateTx(tx *gorm.DB, l *model.PriceLine) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PriceLine, error)
	ListByPositionTx(tx *gorm.DB, positionID uuid.UUID) ([]model.PriceLine, error)

	// ListActiveForUpdate fetches all active lines of one (position, unit)
	// under a row-level lock, serializing concurrent activations.
	ListActiveForUpdate(tx *gorm.DB, positionID uuid.UUID, unit string) ([]model.PriceLine, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type priceLineRepo struct{ db *gorm.DB }

func NewPriceLineRepository(db *gorm.DB) PriceLineRepository { return &priceLineRepo{db: db} }

func (r *priceLineRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PriceLine, error) {
	var l model.PriceLine
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *priceLineRepo) ListByPosition(ctx context.Context, positionID uuid.UUID, filter dto.PriceLineFilter) ([]model.PriceLine, error) {
	q := r.db.WithContext(ctx).Where("position_id = ?", positionID)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Unit != "" {
		q = q.Where("unit = ?", filter.Unit)
	}
	if filter.AsOf != nil {
		q = q.Where("(valid_from IS NULL OR valid_from <= ?)", *filter.AsOf).
			Where("(valid_to IS NULL OR valid_to >= ?)", *filter.AsOf)
	}

	var lines []model.PriceLine
	err := q.Order(lineOrder).Find(&lines).Error
	return lines, translate(err)
}

func (r *priceLineRepo) CreateTx(tx *gorm.DB, l *model.PriceLine) error {
	return translate(tx.Create(l).Error)
}

func (r *priceLineRepo) UpdateTx(tx *gorm.DB, l *model.PriceLine) error {
	return translate(tx.Save(l).Error)
}

func (r *priceLineRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.PriceLine{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *priceLineRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PriceLine, error) {
	var l model.PriceLine
	if err := tx.First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *priceLineRepo) ListByPositionTx(tx *gorm.DB, positionID uuid.UUID) ([]model.PriceLine, error) {
	var lines []model.PriceLine
	err := tx.Where("position_id = ?", positionID).Order(lineOrder).Find(&lines).Error
	return lines, translate(err)
}

func (r *priceLineRepo) ListActiveForUpdate(tx *gorm.DB, positionID uuid.UUID, unit string) ([]model.PriceLine, error) {
	var lines []model.PriceLine
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("position_id = ? AND unit = ? AND status = ?", positionID, unit, model.StatusActive).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, translate(err)
}

func (r *priceLineRepo) DB() *gorm.DB { return r.db }
