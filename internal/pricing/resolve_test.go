package pricing

import (
	"testing"
	"time"

	"registras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func line(amount float64, mutate func(l *model.PriceLine)) model.PriceLine {
	l := model.PriceLine{
		ID:       uuid.New(),
		Amount:   decimal.NewFromFloat(amount),
		Unit:     model.UnitPiece,
		Status:   model.StatusActive,
		Priority: model.DefaultPriority,
	}
	mutate(&l)
	return l
}

func TestResolveFixedBeatsInterval(t *testing.T) {
	lines := []model.PriceLine{
		line(9.50, func(l *model.PriceLine) {
			l.QtyFrom = intp(1)
			l.QtyTo = intp(99)
		}),
		line(7.00, func(l *model.PriceLine) {
			l.IsFixed = true
			l.FixedQty = intp(25)
		}),
	}

	got := Resolve(lines, 25, model.UnitPiece, day("2026-06-01"))
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromFloat(7.00)))

	// 24 and 26 fall back to the interval line
	for _, q := range []int{24, 26} {
		got = Resolve(lines, q, model.UnitPiece, day("2026-06-01"))
		require.NotNil(t, got)
		assert.True(t, got.Amount.Equal(decimal.NewFromFloat(9.50)))
	}
}

func TestResolvePriorityAndRecency(t *testing.T) {
	older := line(10, func(l *model.PriceLine) {
		l.CreatedAt = day("2026-01-01")
	})
	newer := line(11, func(l *model.PriceLine) {
		l.CreatedAt = day("2026-02-01")
	})
	preferred := line(8, func(l *model.PriceLine) {
		l.Priority = 10
		l.CreatedAt = day("2025-01-01")
	})

	// Same priority: the newer line wins
	got := Resolve([]model.PriceLine{older, newer}, 1, model.UnitPiece, day("2026-06-01"))
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(11)))

	// Lower priority beats newer creation
	got = Resolve([]model.PriceLine{older, newer, preferred}, 1, model.UnitPiece, day("2026-06-01"))
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(8)))
}

func TestResolveFiltersStatusUnitAndWindow(t *testing.T) {
	lines := []model.PriceLine{
		line(5, func(l *model.PriceLine) {
			l.Status = model.StatusHistorical
		}),
		line(6, func(l *model.PriceLine) {
			l.Unit = model.UnitKg
		}),
		line(7, func(l *model.PriceLine) {
			l.ValidFrom = datep("2026-01-01")
			l.ValidTo = datep("2026-03-31")
		}),
	}

	// Expired window, wrong unit, historical: nothing applies per piece in June
	assert.Nil(t, Resolve(lines, 1, model.UnitPiece, day("2026-06-01")))

	// Same lines in March: the windowed line applies
	got := Resolve(lines, 1, model.UnitPiece, day("2026-03-15"))
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(7)))

	// The kg line is found under its own unit
	got = Resolve(lines, 1, model.UnitKg, day("2026-06-01"))
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(6)))
}

func TestResolveZeroQuantityUsesOpenLowBound(t *testing.T) {
	lines := []model.PriceLine{
		line(4, func(l *model.PriceLine) {
			l.QtyTo = intp(10)
		}),
		line(9, func(l *model.PriceLine) {
			l.QtyFrom = intp(11)
		}),
	}

	got := Resolve(lines, 0, model.UnitPiece, day("2026-06-01"))
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(4)))
}

func TestResolveOpenValidToStaysApplicable(t *testing.T) {
	lines := []model.PriceLine{
		line(3, func(l *model.PriceLine) {
			l.ValidFrom = datep("2020-01-01")
		}),
	}

	got := Resolve(lines, 1, model.UnitPiece, day("2035-12-31"))
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(3)))
}

func TestBaseLine(t *testing.T) {
	base := line(12, func(l *model.PriceLine) {
		l.CreatedAt = day("2026-01-01")
	})
	laterBase := line(13, func(l *model.PriceLine) {
		l.CreatedAt = day("2026-02-01")
	})
	fixed := line(7, func(l *model.PriceLine) {
		l.IsFixed = true
		l.FixedQty = intp(25)
	})
	kg := line(2, func(l *model.PriceLine) {
		l.Unit = model.UnitKg
	})
	historical := line(1, func(l *model.PriceLine) {
		l.Status = model.StatusHistorical
	})

	// Fixed, kg, and historical lines never qualify; priority tie goes to
	// the earliest created line.
	got := BaseLine([]model.PriceLine{fixed, kg, historical, laterBase, base})
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(12)))

	assert.Nil(t, BaseLine([]model.PriceLine{fixed, kg, historical}))
}
