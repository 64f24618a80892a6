package pricing

import (
	"registras/internal/model"
)

// ValidateShape checks a single price line against the shape rules:
//
//   - unit must be one of the enumerated units
//   - amount must be >= 0
//   - fixed lines carry a positive fixed quantity and no interval bounds
//   - interval lines carry no fixed quantity; bounds, when present, are
//     positive and ordered (qty_to >= qty_from)
//   - the validity window, when both ends are set, must be ordered
//
// A line with both quantity bounds open is the catch-all base shape and is
// valid. Returns nil when the line is well-formed.
func ValidateShape(l *model.PriceLine) *ValidationError {
	if !model.ValidUnit(l.Unit) {
		return &ValidationError{Field: "unit", Rule: "unit_enum", Msg: "unknown unit " + l.Unit}
	}
	if l.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Rule: "amount_negative", Msg: "amount must not be negative"}
	}
	if l.Status != model.StatusActive && l.Status != model.StatusHistorical {
		return &ValidationError{Field: "status", Rule: "status_enum", Msg: "unknown status " + l.Status}
	}

	if l.IsFixed {
		if l.FixedQty == nil {
			return &ValidationError{Field: "fixed_qty", Rule: "fixed_qty_required", Msg: "fixed line requires fixed_qty"}
		}
		if *l.FixedQty <= 0 {
			return &ValidationError{Field: "fixed_qty", Rule: "fixed_qty_positive", Msg: "fixed_qty must be positive"}
		}
		if l.QtyFrom != nil || l.QtyTo != nil {
			return &ValidationError{Field: "qty_from", Rule: "fixed_no_bounds", Msg: "fixed line must not carry interval bounds"}
		}
	} else {
		if l.FixedQty != nil {
			return &ValidationError{Field: "fixed_qty", Rule: "interval_no_fixed_qty", Msg: "interval line must not carry fixed_qty"}
		}
		if l.QtyFrom != nil && *l.QtyFrom <= 0 {
			return &ValidationError{Field: "qty_from", Rule: "bound_positive", Msg: "qty_from must be positive"}
		}
		if l.QtyTo != nil && *l.QtyTo <= 0 {
			return &ValidationError{Field: "qty_to", Rule: "bound_positive", Msg: "qty_to must be positive"}
		}
		if l.QtyFrom != nil && l.QtyTo != nil && *l.QtyTo < *l.QtyFrom {
			return &ValidationError{Field: "qty_to", Rule: "bounds_ordered", Msg: "qty_to must not be below qty_from"}
		}
	}

	if l.ValidFrom != nil && l.ValidTo != nil && l.ValidTo.Before(*l.ValidFrom) {
		return &ValidationError{Field: "valid_to", Rule: "window_ordered", Msg: "valid_to must not be before valid_from"}
	}
	return nil
}

// QuantityOverlap reports whether the quantity supports of two lines
// intersect. An open low bound counts as 0, an open high bound as infinity.
func QuantityOverlap(a, b *model.PriceLine) bool {
	switch {
	case a.IsFixed && b.IsFixed:
		return a.FixedQty != nil && b.FixedQty != nil && *a.FixedQty == *b.FixedQty
	case a.IsFixed:
		return a.FixedQty != nil && b.Covers(*a.FixedQty)
	case b.IsFixed:
		return b.FixedQty != nil && a.Covers(*b.FixedQty)
	}

	aLo, aHi := bounds(a)
	bLo, bHi := bounds(b)
	return aLo <= bHi && bLo <= aHi
}

// bounds maps an interval line to closed integer bounds, substituting 0 for
// an open low bound and a sentinel max for an open high bound.
func bounds(l *model.PriceLine) (lo, hi int) {
	lo, hi = 0, int(^uint(0)>>1)
	if l.QtyFrom != nil {
		lo = *l.QtyFrom
	}
	if l.QtyTo != nil {
		hi = *l.QtyTo
	}
	return lo, hi
}

// TimeOverlap reports whether the validity windows of two lines intersect.
// Open bounds extend to -inf / +inf.
func TimeOverlap(a, b *model.PriceLine) bool {
	// a starts after b ends, or b starts after a ends -> disjoint
	if a.ValidFrom != nil && b.ValidTo != nil && a.ValidFrom.After(*b.ValidTo) {
		return false
	}
	if b.ValidFrom != nil && a.ValidTo != nil && b.ValidFrom.After(*a.ValidTo) {
		return false
	}
	return true
}

// Conflicts reports whether activating next must demote existing. Demotion
// stays inside a line's own kind: a fixed line supersedes only the fixed line
// at the same quantity, an interval line supersedes only intervals whose
// range and window overlap it. Fixed points and intervals coexist; the
// resolver arbitrates between them at lookup time.
func Conflicts(next, existing *model.PriceLine) bool {
	if existing.ID == next.ID {
		return false
	}
	if existing.PositionID != next.PositionID || existing.Unit != next.Unit {
		return false
	}
	if existing.Status != model.StatusActive {
		return false
	}
	if existing.IsFixed != next.IsFixed {
		return false
	}
	return QuantityOverlap(next, existing) && TimeOverlap(next, existing)
}
