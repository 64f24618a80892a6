package service

import (
	"context"
	"sort"
	"time"

	"registras/internal/dto"
	"registras/internal/model"
	"registras/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory PositionRepository stub ────────────────────────────────────────

type stubPositionRepo struct {
	positions map[uuid.UUID]*model.Position
}

func newStubPositionRepo() *stubPositionRepo {
	return &stubPositionRepo{positions: make(map[uuid.UUID]*model.Position)}
}

func (r *stubPositionRepo) Create(_ context.Context, p *model.Position) error {
	return r.CreateTx(nil, p)
}

func (r *stubPositionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Position, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubPositionRepo) FindByCode(_ context.Context, code string) (*model.Position, error) {
	return r.FindByCodeTx(nil, code)
}

func (r *stubPositionRepo) List(_ context.Context, _ dto.PositionFilter) ([]model.Position, int64, error) {
	result := make([]model.Position, 0, len(r.positions))
	for _, p := range r.positions {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, int64(len(result)), nil
}

func (r *stubPositionRepo) Update(_ context.Context, p *model.Position) error {
	return r.UpdateTx(nil, p)
}

func (r *stubPositionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.positions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.positions, id)
	return nil
}

func (r *stubPositionRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Position, error) {
	p, ok := r.positions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPositionRepo) FindByCodeTx(_ *gorm.DB, code string) (*model.Position, error) {
	for _, p := range r.positions {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubPositionRepo) CreateTx(_ *gorm.DB, p *model.Position) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existing := range r.positions {
		if existing.Code == p.Code {
			return repository.ErrDuplicate
		}
	}
	cp := *p
	r.positions[p.ID] = &cp
	return nil
}

func (r *stubPositionRepo) UpdateTx(_ *gorm.DB, p *model.Position) error {
	if _, ok := r.positions[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.positions[p.ID] = &cp
	return nil
}

func (r *stubPositionRepo) UpdateActivePriceTx(_ *gorm.DB, id uuid.UUID, amount *decimal.Decimal) error {
	p, ok := r.positions[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.ActiveUnitPrice = amount
	return nil
}

func (r *stubPositionRepo) ListMirroredTx(_ *gorm.DB) ([]model.Position, error) {
	var result []model.Position
	for _, p := range r.positions {
		if p.ActiveUnitPrice != nil {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (r *stubPositionRepo) DB() *gorm.DB { return nil }

// ── In-memory PriceLineRepository stub ───────────────────────────────────────

type stubPriceLineRepo struct {
	lines map[uuid.UUID]*model.PriceLine
	now   time.Time
}

func newStubPriceLineRepo() *stubPriceLineRepo {
	return &stubPriceLineRepo{
		lines: make(map[uuid.UUID]*model.PriceLine),
		now:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick produces strictly increasing CreatedAt values so recency tie-breaks
// are deterministic.
func (r *stubPriceLineRepo) tick() time.Time {
	r.now = r.now.Add(time.Minute)
	return r.now
}

func (r *stubPriceLineRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PriceLine, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubPriceLineRepo) ListByPosition(_ context.Context, positionID uuid.UUID, filter dto.PriceLineFilter) ([]model.PriceLine, error) {
	var result []model.PriceLine
	for _, l := range r.lines {
		if l.PositionID != positionID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Unit != "" && l.Unit != filter.Unit {
			continue
		}
		if filter.AsOf != nil && !l.ValidOn(*filter.AsOf) {
			continue
		}
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *stubPriceLineRepo) CreateTx(_ *gorm.DB, l *model.PriceLine) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.tick()
	}
	cp := *l
	r.lines[l.ID] = &cp
	return nil
}

func (r *stubPriceLineRepo) UpdateTx(_ *gorm.DB, l *model.PriceLine) error {
	if _, ok := r.lines[l.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *l
	r.lines[l.ID] = &cp
	return nil
}

func (r *stubPriceLineRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.lines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.lines, id)
	return nil
}

func (r *stubPriceLineRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.PriceLine, error) {
	l, ok := r.lines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *stubPriceLineRepo) ListByPositionTx(_ *gorm.DB, positionID uuid.UUID) ([]model.PriceLine, error) {
	return r.ListByPosition(context.Background(), positionID, dto.PriceLineFilter{})
}

func (r *stubPriceLineRepo) ListActiveForUpdate(_ *gorm.DB, positionID uuid.UUID, unit string) ([]model.PriceLine, error) {
	var result []model.PriceLine
	for _, l := range r.lines {
		if l.PositionID == positionID && l.Unit == unit && l.Status == model.StatusActive {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *stubPriceLineRepo) DB() *gorm.DB { return nil }

func newRandomID() uuid.UUID { return uuid.New() }
