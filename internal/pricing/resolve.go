package pricing

import (
	"time"

	"registras/internal/model"
)

// Resolve selects the single applicable active line for a quantity on a given
// day, or nil when nothing covers it.
//
// Fixed-quantity lines matching the exact quantity beat interval lines.
// Within a group the lowest priority wins; ties go to the most recently
// created line. The function is pure: callers pass the candidate lines
// (any status — filtering happens here) and the as-of day.
func Resolve(lines []model.PriceLine, qty int, unit string, asOf time.Time) *model.PriceLine {
	var fixed, interval *model.PriceLine

	for i := range lines {
		l := &lines[i]
		if l.Status != model.StatusActive || l.Unit != unit || !l.ValidOn(asOf) {
			continue
		}
		if l.IsFixed {
			if l.FixedQty != nil && *l.FixedQty == qty {
				fixed = better(fixed, l)
			}
			continue
		}
		if l.Covers(qty) {
			interval = better(interval, l)
		}
	}

	if fixed != nil {
		return fixed
	}
	return interval
}

// BaseLine selects the active catch-all line mirrored into
// Position.ActiveUnitPrice: unit "unit", non-fixed, both bounds open.
// Lowest priority wins; ties go to the earliest created line.
func BaseLine(lines []model.PriceLine) *model.PriceLine {
	var best *model.PriceLine
	for i := range lines {
		l := &lines[i]
		if !l.IsBase() {
			continue
		}
		if best == nil ||
			l.Priority < best.Priority ||
			(l.Priority == best.Priority && l.CreatedAt.Before(best.CreatedAt)) {
			best = l
		}
	}
	return best
}

// better keeps the stronger of two resolution candidates: lower priority,
// then newer created timestamp.
func better(cur, cand *model.PriceLine) *model.PriceLine {
	if cur == nil {
		return cand
	}
	if cand.Priority < cur.Priority {
		return cand
	}
	if cand.Priority == cur.Priority && cand.CreatedAt.After(cur.CreatedAt) {
		return cand
	}
	return cur
}
