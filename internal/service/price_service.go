package service

import (
	"context"
	"encoding/json"
	"time"

	"registras/internal/dto"
	"registras/internal/model"
	"registras/internal/pricing"
	"registras/internal/repository"
	"registras/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const quickPriceKeyPrefix = "price:"

// PriceService is the single writer of price lines and of the derived
// Position.ActiveUnitPrice mirror. Every mutation runs in one transaction:
// validate, persist, demote conflicting active lines under row lock, then
// re-sync the mirror. Reads (resolution, listing) never write.
type PriceService interface {
	CreatePrice(ctx context.Context, positionID uuid.UUID, req dto.PriceLineRequest) (*dto.PriceLineResponse, error)
	UpdatePrice(ctx context.Context, lineID uuid.UUID, req dto.PriceLineRequest) (*dto.PriceLineResponse, error)
	DeletePrice(ctx context.Context, lineID uuid.UUID) error
	SetBaseUnitPrice(ctx context.Context, positionID uuid.UUID, amount decimal.Decimal) (*dto.PriceLineResponse, error)
	ListPrices(ctx context.Context, positionID uuid.UUID, filter dto.PriceLineFilter) (*dto.PriceLineListResponse, error)
	ResolveActivePrice(ctx context.Context, positionID uuid.UUID, qty int, unit string, asOf *time.Time) (*dto.PriceLineResponse, error)

	// SetBaseUnitPriceTx is the shortcut for callers already inside a
	// transaction (importer, backfill). No audit event is emitted.
	SetBaseUnitPriceTx(tx *gorm.DB, position *model.Position, amount decimal.Decimal) (*model.PriceLine, error)
}

type priceService struct {
	lineRepo   repository.PriceLineRepository
	posRepo    repository.PositionRepository
	clock      pricing.Clock
	rdb        *redis.Client
	dispatcher *worker.Dispatcher
}

func NewPriceService(
	lineRepo repository.PriceLineRepository,
	posRepo repository.PositionRepository,
	clock pricing.Clock,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
) PriceService {
	return &priceService{
		lineRepo:   lineRepo,
		posRepo:    posRepo,
		clock:      clock,
		rdb:        rdb,
		dispatcher: dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CreatePrice ───────────────────────────────────────────────────────────────

func (s *priceService) CreatePrice(ctx context.Context, positionID uuid.UUID, req dto.PriceLineRequest) (*dto.PriceLineResponse, error) {
	line, verr := s.lineFromRequest(positionID, req)
	if verr != nil {
		return nil, verr
	}

	var code string
	var mirrorChanged bool
	txErr := runTx(ctx, s.lineRepo.DB(), func(tx *gorm.DB) error {
		pos, err := s.posRepo.FindByIDTx(tx, positionID)
		if err != nil {
			return err
		}
		code = pos.Code
		if err := s.writeLineTx(tx, line, true); err != nil {
			return err
		}
		mirrorChanged, err = s.syncPositionPriceTx(tx, pos)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.afterWrite(ctx, code, mirrorChanged)
	s.audit(ctx, "price_line", line.ID, "create", nil, snapshot(line))
	return lineToResponse(line), nil
}

// ── UpdatePrice ───────────────────────────────────────────────────────────────

func (s *priceService) UpdatePrice(ctx context.Context, lineID uuid.UUID, req dto.PriceLineRequest) (*dto.PriceLineResponse, error) {
	var line *model.PriceLine
	var before *string
	var code string
	var mirrorChanged bool

	txErr := runTx(ctx, s.lineRepo.DB(), func(tx *gorm.DB) error {
		existing, err := s.lineRepo.FindByIDTx(tx, lineID)
		if err != nil {
			return err
		}
		before = snapshot(existing)

		updated, verr := s.lineFromRequest(existing.PositionID, req)
		if verr != nil {
			return verr
		}
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt
		line = updated

		pos, err := s.posRepo.FindByIDTx(tx, existing.PositionID)
		if err != nil {
			return err
		}
		code = pos.Code

		if err := s.writeLineTx(tx, line, false); err != nil {
			return err
		}
		mirrorChanged, err = s.syncPositionPriceTx(tx, pos)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.afterWrite(ctx, code, mirrorChanged)
	s.audit(ctx, "price_line", line.ID, "update", before, snapshot(line))
	return lineToResponse(line), nil
}

// ── DeletePrice ───────────────────────────────────────────────────────────────

// DeletePrice physically removes a line. Normal flows demote instead; this
// is the explicit admin path, so the mirror is re-synced afterwards.
func (s *priceService) DeletePrice(ctx context.Context, lineID uuid.UUID) error {
	var before *string
	var code string
	var mirrorChanged bool

	txErr := runTx(ctx, s.lineRepo.DB(), func(tx *gorm.DB) error {
		existing, err := s.lineRepo.FindByIDTx(tx, lineID)
		if err != nil {
			return err
		}
		before = snapshot(existing)

		pos, err := s.posRepo.FindByIDTx(tx, existing.PositionID)
		if err != nil {
			return err
		}
		code = pos.Code

		if err := s.lineRepo.DeleteTx(tx, lineID); err != nil {
			return err
		}
		mirrorChanged, err = s.syncPositionPriceTx(tx, pos)
		return err
	})
	if txErr != nil {
		return txErr
	}

	s.afterWrite(ctx, code, mirrorChanged)
	s.audit(ctx, "price_line", lineID, "delete", before, nil)
	return nil
}

// ── SetBaseUnitPrice ──────────────────────────────────────────────────────────

// SetBaseUnitPrice updates the catch-all base line's amount, creating the
// line when the position has none. This is the path the part-editing form
// and the importer use, so repeating it with the same amount must converge
// to a single base line.
func (s *priceService) SetBaseUnitPrice(ctx context.Context, positionID uuid.UUID, amount decimal.Decimal) (*dto.PriceLineResponse, error) {
	var line *model.PriceLine
	var code string

	txErr := runTx(ctx, s.lineRepo.DB(), func(tx *gorm.DB) error {
		pos, err := s.posRepo.FindByIDTx(tx, positionID)
		if err != nil {
			return err
		}
		code = pos.Code
		line, err = s.SetBaseUnitPriceTx(tx, pos, amount)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.afterWrite(ctx, code, true)
	s.audit(ctx, "price_line", line.ID, "update", nil, snapshot(line))
	return lineToResponse(line), nil
}

func (s *priceService) SetBaseUnitPriceTx(tx *gorm.DB, position *model.Position, amount decimal.Decimal) (*model.PriceLine, error) {
	if amount.IsNegative() {
		return nil, &pricing.ValidationError{Field: "amount", Rule: "amount_negative", Msg: "amount must not be negative"}
	}

	lines, err := s.lineRepo.ListByPositionTx(tx, position.ID)
	if err != nil {
		return nil, err
	}

	line := pricing.BaseLine(lines)
	if line != nil {
		line.Amount = amount
		if err := s.writeLineTx(tx, line, false); err != nil {
			return nil, err
		}
	} else {
		line = &model.PriceLine{
			PositionID: position.ID,
			Amount:     amount,
			Unit:       model.UnitPiece,
			Status:     model.StatusActive,
			Priority:   model.DefaultPriority,
		}
		if err := s.writeLineTx(tx, line, true); err != nil {
			return nil, err
		}
	}

	if _, err := s.syncPositionPriceTx(tx, position); err != nil {
		return nil, err
	}
	return line, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *priceService) ListPrices(ctx context.Context, positionID uuid.UUID, filter dto.PriceLineFilter) (*dto.PriceLineListResponse, error) {
	if _, err := s.posRepo.FindByID(ctx, positionID); err != nil {
		return nil, err
	}
	lines, err := s.lineRepo.ListByPosition(ctx, positionID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PriceLineResponse, 0, len(lines))
	for i := range lines {
		data = append(data, *lineToResponse(&lines[i]))
	}
	return &dto.PriceLineListResponse{Data: data, Total: len(data)}, nil
}

// ResolveActivePrice returns the single applicable active line for the
// quantity, or nil when nothing covers it. An omitted unit defaults to
// "unit"; an omitted as-of date defaults to the injected clock's today.
func (s *priceService) ResolveActivePrice(ctx context.Context, positionID uuid.UUID, qty int, unit string, asOf *time.Time) (*dto.PriceLineResponse, error) {
	if unit == "" {
		unit = model.UnitPiece
	}
	if !model.ValidUnit(unit) {
		return nil, &pricing.ValidationError{Field: "unit", Rule: "unit_enum", Msg: "unknown unit " + unit}
	}
	day := s.clock.Today()
	if asOf != nil {
		day = *asOf
	}

	if _, err := s.posRepo.FindByID(ctx, positionID); err != nil {
		return nil, err
	}
	lines, err := s.lineRepo.ListByPosition(ctx, positionID, dto.PriceLineFilter{
		Status: model.StatusActive,
		Unit:   unit,
	})
	if err != nil {
		return nil, err
	}

	line := pricing.Resolve(lines, qty, unit, day)
	if line == nil {
		return nil, nil
	}
	return lineToResponse(line), nil
}

// ── Transaction internals ─────────────────────────────────────────────────────

// writeLineTx validates and persists one line, then runs the activation flow
// when the line lands active.
func (s *priceService) writeLineTx(tx *gorm.DB, line *model.PriceLine, isNew bool) error {
	if verr := pricing.ValidateShape(line); verr != nil {
		return verr
	}
	var err error
	if isNew {
		err = s.lineRepo.CreateTx(tx, line)
	} else {
		err = s.lineRepo.UpdateTx(tx, line)
	}
	if err != nil {
		return err
	}
	if line.Status == model.StatusActive {
		return s.activateTx(tx, line)
	}
	return nil
}

// activateTx demotes every active line of the same kind on the same
// (position, unit) that the new line supersedes per pricing.Conflicts. The
// candidate set is read under SELECT ... FOR UPDATE, which serializes
// concurrent activations on the same group.
func (s *priceService) activateTx(tx *gorm.DB, line *model.PriceLine) error {
	candidates, err := s.lineRepo.ListActiveForUpdate(tx, line.PositionID, line.Unit)
	if err != nil {
		return err
	}

	for i := range candidates {
		c := &candidates[i]
		if !pricing.Conflicts(line, c) {
			continue
		}
		c.Status = model.StatusHistorical
		// Close the superseded window the day before the new line takes
		// effect, when that keeps the window well-formed.
		if line.ValidFrom != nil && (c.ValidTo == nil || !c.ValidTo.Before(*line.ValidFrom)) {
			end := line.ValidFrom.AddDate(0, 0, -1)
			if c.ValidFrom == nil || !end.Before(*c.ValidFrom) {
				c.ValidTo = &end
			}
		}
		if err := s.lineRepo.UpdateTx(tx, c); err != nil {
			return err
		}
	}
	return nil
}

// syncPositionPriceTx recomputes the mirror from the position's lines and
// persists it only when the value changed. Returns whether it changed.
func (s *priceService) syncPositionPriceTx(tx *gorm.DB, position *model.Position) (bool, error) {
	lines, err := s.lineRepo.ListByPositionTx(tx, position.ID)
	if err != nil {
		return false, err
	}

	var next *decimal.Decimal
	if base := pricing.BaseLine(lines); base != nil {
		amount := base.Amount
		next = &amount
	}

	if mirrorEqual(position.ActiveUnitPrice, next) {
		return false, nil
	}
	if err := s.posRepo.UpdateActivePriceTx(tx, position.ID, next); err != nil {
		return false, err
	}
	position.ActiveUnitPrice = next
	return true, nil
}

func mirrorEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// afterWrite performs post-commit bookkeeping: dropping the cached quick
// price when the mirror moved. Failures are logged, never surfaced.
func (s *priceService) afterWrite(ctx context.Context, code string, mirrorChanged bool) {
	if !mirrorChanged || s.rdb == nil || code == "" {
		return
	}
	if err := s.rdb.Del(ctx, quickPriceKeyPrefix+code).Err(); err != nil {
		log.Warn().Str("code", code).Err(err).Msg("failed to invalidate quick price cache")
	}
}

func (s *priceService) audit(ctx context.Context, entity string, id uuid.UUID, action string, before, after *string) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.EnqueueAudit(ctx, worker.AuditEvent{
		Entity:   entity,
		EntityID: id,
		Action:   action,
		Before:   before,
		After:    after,
	})
	if err != nil {
		log.Warn().Str("entity", entity).Str("action", action).Err(err).Msg("failed to enqueue audit event")
	}
}

// ── Mapping ───────────────────────────────────────────────────────────────────

const dateLayout = "2006-01-02"

// lineFromRequest builds a model from wire input. Defaults: status active,
// priority 100, valid_from today (per the injected clock).
func (s *priceService) lineFromRequest(positionID uuid.UUID, req dto.PriceLineRequest) (*model.PriceLine, *pricing.ValidationError) {
	line := &model.PriceLine{
		PositionID: positionID,
		Amount:     req.Amount,
		Unit:       req.Unit,
		IsFixed:    req.IsFixed,
		FixedQty:   req.FixedQty,
		QtyFrom:    req.QtyFrom,
		QtyTo:      req.QtyTo,
		Status:     req.Status,
		Priority:   model.DefaultPriority,
		Note:       req.Note,
	}
	if line.Status == "" {
		line.Status = model.StatusActive
	}
	if req.Priority != nil {
		line.Priority = *req.Priority
	}

	var verr *pricing.ValidationError
	if line.ValidFrom, verr = parseDate("valid_from", req.ValidFrom); verr != nil {
		return nil, verr
	}
	if line.ValidTo, verr = parseDate("valid_to", req.ValidTo); verr != nil {
		return nil, verr
	}
	if line.ValidFrom == nil {
		today := s.clock.Today()
		line.ValidFrom = &today
	}
	return line, nil
}

func parseDate(field string, raw *string) (*time.Time, *pricing.ValidationError) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, *raw, time.UTC)
	if err != nil {
		return nil, &pricing.ValidationError{Field: field, Rule: "date_format", Msg: "expected YYYY-MM-DD"}
	}
	return &t, nil
}

func lineToResponse(l *model.PriceLine) *dto.PriceLineResponse {
	return &dto.PriceLineResponse{
		ID:         l.ID.String(),
		PositionID: l.PositionID.String(),
		Amount:     l.Amount,
		Unit:       l.Unit,
		IsFixed:    l.IsFixed,
		FixedQty:   l.FixedQty,
		QtyFrom:    l.QtyFrom,
		QtyTo:      l.QtyTo,
		ValidFrom:  formatDate(l.ValidFrom),
		ValidTo:    formatDate(l.ValidTo),
		Status:     l.Status,
		Priority:   l.Priority,
		Note:       l.Note,
		CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// snapshot renders a JSON image of the line for the audit trail.
func snapshot(l *model.PriceLine) *string {
	b, err := json.Marshal(lineToResponse(l))
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
