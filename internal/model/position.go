package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Position is one part quoted for a specific customer/project, identified by
// a unique short code. Most descriptive fields are free text coming from the
// quotation sheet; only Code and ActiveUnitPrice carry pricing semantics.
type Position struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code     string    `gorm:"uniqueIndex;not null"`
	Customer string    `gorm:"index"`
	Project  string    `gorm:"index"`
	Name     string

	// Part description
	Metal         string
	Area          string
	Weight        string
	Coating       string
	Color         string
	PackagingType string
	Packaging     string
	Note          string

	// ActiveUnitPrice mirrors the amount of the base active price line
	// (unit "unit", no quantity bounds). Maintained exclusively by the
	// price service; list views read it instead of joining price_lines.
	ActiveUnitPrice *decimal.Decimal `gorm:"type:decimal(12,4)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	PriceLines []PriceLine `gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE"`
}
