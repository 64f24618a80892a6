package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Units of measure a price line may be expressed in.
const (
	UnitPiece = "unit"
	UnitM2    = "m2"
	UnitKg    = "kg"
	UnitHour  = "hour"
)

// Price line statuses. A line is either currently applicable or superseded;
// rows are never physically deleted by the activation flow.
const (
	StatusActive     = "active"
	StatusHistorical = "historical"
)

// DefaultPriority is assigned when the caller does not specify one.
// Lower values take precedence.
const DefaultPriority = 100

// Units lists the accepted unit enum values in a stable order.
var Units = []string{UnitPiece, UnitM2, UnitKg, UnitHour}

// ValidUnit reports whether u is one of the enumerated units.
func ValidUnit(u string) bool {
	switch u {
	case UnitPiece, UnitM2, UnitKg, UnitHour:
		return true
	}
	return false
}

// PriceLine is one priced offer row attached to a position. It covers either
// a single fixed quantity (IsFixed, FixedQty) or an integer quantity interval
// (QtyFrom..QtyTo, either bound open), within an optional validity window.
type PriceLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PositionID uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_lines_lookup,priority:1"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Unit       string          `gorm:"not null;default:'unit';index:idx_price_lines_lookup,priority:2"`

	IsFixed  bool `gorm:"not null;default:false"`
	FixedQty *int
	QtyFrom  *int
	QtyTo    *int

	ValidFrom *time.Time `gorm:"type:date"`
	ValidTo   *time.Time `gorm:"type:date"`

	Status   string `gorm:"not null;default:'active';index:idx_price_lines_lookup,priority:3"`
	Priority int    `gorm:"not null;default:100"`
	Note     string

	CreatedAt time.Time
	UpdatedAt time.Time

	Position *Position `gorm:"foreignKey:PositionID"`
}

// Covers reports whether the line's quantity support contains q.
func (l *PriceLine) Covers(q int) bool {
	if l.IsFixed {
		return l.FixedQty != nil && *l.FixedQty == q
	}
	if l.QtyFrom != nil && q < *l.QtyFrom {
		return false
	}
	if l.QtyTo != nil && q > *l.QtyTo {
		return false
	}
	return true
}

// ValidOn reports whether the validity window contains day. Open bounds
// always satisfy.
func (l *PriceLine) ValidOn(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	if l.ValidFrom != nil && d.Before(l.ValidFrom.Truncate(24*time.Hour)) {
		return false
	}
	if l.ValidTo != nil && d.After(l.ValidTo.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

// IsBase reports whether the line is the position's catch-all base line:
// active, priced per piece, non-fixed, with both quantity bounds open.
// The position's ActiveUnitPrice mirrors the best such line.
func (l *PriceLine) IsBase() bool {
	return l.Status == StatusActive &&
		l.Unit == UnitPiece &&
		!l.IsFixed &&
		l.QtyFrom == nil &&
		l.QtyTo == nil
}
