package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreatePositionRequest struct {
	Code     string `json:"code"     validate:"required,min=1,max=100"`
	Customer string `json:"customer" validate:"max=255"`
	Project  string `json:"project"  validate:"max=255"`
	Name     string `json:"name"     validate:"max=255"`

	Metal         string `json:"metal"`
	Area          string `json:"area"`
	Weight        string `json:"weight"`
	Coating       string `json:"coating"`
	Color         string `json:"color"`
	PackagingType string `json:"packaging_type"`
	Packaging     string `json:"packaging"`
	Note          string `json:"note"`

	// UnitPrice, when present, seeds the base price line via the shortcut path.
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,min=0"`
}

type UpdatePositionRequest struct {
	Customer *string `json:"customer" validate:"omitempty,max=255"`
	Project  *string `json:"project"  validate:"omitempty,max=255"`
	Name     *string `json:"name"     validate:"omitempty,max=255"`

	Metal         *string `json:"metal"`
	Area          *string `json:"area"`
	Weight        *string `json:"weight"`
	Coating       *string `json:"coating"`
	Color         *string `json:"color"`
	PackagingType *string `json:"packaging_type"`
	Packaging     *string `json:"packaging"`
	Note          *string `json:"note"`

	// UnitPrice routes through the base-line shortcut, never a raw column write.
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type PositionFilter struct {
	Code     string `form:"code"`
	Customer string `form:"customer"`
	Project  string `form:"project"`
	Q        string `form:"q"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PositionResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Customer string `json:"customer"`
	Project  string `json:"project"`
	Name     string `json:"name"`

	Metal         string `json:"metal"`
	Area          string `json:"area"`
	Weight        string `json:"weight"`
	Coating       string `json:"coating"`
	Color         string `json:"color"`
	PackagingType string `json:"packaging_type"`
	Packaging     string `json:"packaging"`
	Note          string `json:"note"`

	ActiveUnitPrice *decimal.Decimal `json:"active_unit_price"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

type PositionListResponse struct {
	Data  []PositionResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// QuickPriceResponse is returned by the public price check endpoint.
type QuickPriceResponse struct {
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Customer  string           `json:"customer"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}
