package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PriceLineRequest carries all writable fields of a price line; it serves
// both creation and full update. Dates use the YYYY-MM-DD wire format.
type PriceLineRequest struct {
	Amount   decimal.Decimal `json:"amount"   validate:"min=0"`
	Unit     string          `json:"unit"     validate:"required,oneof=unit m2 kg hour"`
	IsFixed  bool            `json:"is_fixed"`
	FixedQty *int            `json:"fixed_qty" validate:"omitempty,min=1"`
	QtyFrom  *int            `json:"qty_from"  validate:"omitempty,min=1"`
	QtyTo    *int            `json:"qty_to"    validate:"omitempty,min=1"`

	ValidFrom *string `json:"valid_from" validate:"omitempty,datetime=2006-01-02"`
	ValidTo   *string `json:"valid_to"   validate:"omitempty,datetime=2006-01-02"`

	Status   string `json:"status"   validate:"omitempty,oneof=active historical"`
	Priority *int   `json:"priority" validate:"omitempty,min=0"`
	Note     string `json:"note"     validate:"max=255"`
}

// SetBasePriceRequest is the shortcut used by the part-editing form: one
// amount, applied to the catch-all base line.
type SetBasePriceRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type PriceLineFilter struct {
	Status string     `form:"status" validate:"omitempty,oneof=active historical"`
	Unit   string     `form:"unit"   validate:"omitempty,oneof=unit m2 kg hour"`
	AsOf   *time.Time `form:"as_of"  time_format:"2006-01-02"`
}

type ResolveQuery struct {
	Qty  int        `form:"qty"  validate:"min=0"`
	Unit string     `form:"unit" validate:"omitempty,oneof=unit m2 kg hour"`
	AsOf *time.Time `form:"as_of" time_format:"2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PriceLineResponse struct {
	ID         string          `json:"id"`
	PositionID string          `json:"position_id"`
	Amount     decimal.Decimal `json:"amount"`
	Unit       string          `json:"unit"`
	IsFixed    bool            `json:"is_fixed"`
	FixedQty   *int            `json:"fixed_qty"`
	QtyFrom    *int            `json:"qty_from"`
	QtyTo      *int            `json:"qty_to"`
	ValidFrom  *string         `json:"valid_from"`
	ValidTo    *string         `json:"valid_to"`
	Status     string          `json:"status"`
	Priority   int             `json:"priority"`
	Note       string          `json:"note"`
	CreatedAt  string          `json:"created_at"`
}

type PriceLineListResponse struct {
	Data  []PriceLineResponse `json:"data"`
	Total int                 `json:"total"`
}

// ResolveResponse wraps resolution output; Line is null when nothing covers
// the query.
type ResolveResponse struct {
	Line *PriceLineResponse `json:"line"`
}
