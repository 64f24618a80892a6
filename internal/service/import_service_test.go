package service

import (
	"context"
	"strings"
	"testing"

	"registras/internal/model"
	"registras/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type importFixture struct {
	svc      ImportService
	posRepo  *stubPositionRepo
	lineRepo *stubPriceLineRepo
}

func newImportFixture() *importFixture {
	posRepo := newStubPositionRepo()
	lineRepo := newStubPriceLineRepo()
	priceSvc := NewPriceService(lineRepo, posRepo, pricing.FixedClock{Day: testDay("2026-06-01")}, nil, nil)
	return &importFixture{
		svc:      NewImportService(posRepo, priceSvc),
		posRepo:  posRepo,
		lineRepo: lineRepo,
	}
}

func TestImportCSVCreatesAndPrices(t *testing.T) {
	f := newImportFixture()
	csv := "\xef\xbb\xbf" + // UTF-8 BOM as Excel writes it
		"Position code;Customer;Position name;Price (EUR)\n" +
		"EL-1001;Acme;Bracket;12,50\n" +
		"EL-1002;Umbrella;Frame;\n"

	report, err := f.svc.ImportCSV(context.Background(), strings.NewReader(csv), false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 1, report.PricesSet)
	assert.Empty(t, report.Errors)

	priced, err := f.posRepo.FindByCode(context.Background(), "EL-1001")
	require.NoError(t, err)
	require.NotNil(t, priced.ActiveUnitPrice)
	assert.True(t, priced.ActiveUnitPrice.Equal(decimal.NewFromFloat(12.50)))

	// Blank price cell: position created, pricing untouched
	unpriced, err := f.posRepo.FindByCode(context.Background(), "EL-1002")
	require.NoError(t, err)
	assert.Nil(t, unpriced.ActiveUnitPrice)
	lines, err := f.lineRepo.ListByPositionTx(nil, unpriced.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestImportCSVUpsertsByCode(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()

	first := "code,customer,name,unit_price\nEL-1001,Acme,Bracket,10.00\n"
	_, err := f.svc.ImportCSV(ctx, strings.NewReader(first), false)
	require.NoError(t, err)

	// Same code again: update, not duplicate; blank customer clears the field
	second := "code,customer,name,unit_price\nEL-1001,,Bracket v2,11.00\n"
	report, err := f.svc.ImportCSV(ctx, strings.NewReader(second), false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Updated)

	pos, err := f.posRepo.FindByCode(ctx, "EL-1001")
	require.NoError(t, err)
	assert.Equal(t, "Bracket v2", pos.Name)
	assert.Equal(t, "", pos.Customer)
	require.NotNil(t, pos.ActiveUnitPrice)
	assert.True(t, pos.ActiveUnitPrice.Equal(decimal.NewFromFloat(11.00)))

	// Still a single base line after repeated priced imports
	lines, err := f.lineRepo.ListByPositionTx(nil, pos.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestImportCSVCollectsRowErrors(t *testing.T) {
	f := newImportFixture()
	csv := "code;unit_price\n" +
		";10.00\n" + // missing code
		"EL-2001;not-a-price\n" +
		"EL-2002;5.00\n"

	report, err := f.svc.ImportCSV(context.Background(), strings.NewReader(csv), false)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Created) // EL-2001 row still creates the position
	assert.Equal(t, 1, report.PricesSet)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, 3, report.Errors[1].Row)
}

func TestImportCSVRejectsHeaderWithoutCode(t *testing.T) {
	f := newImportFixture()
	_, err := f.svc.ImportCSV(context.Background(), strings.NewReader("customer;name\nAcme;Bracket\n"), false)
	require.Error(t, err)
}

func TestBackfillCreatesBaseLinesOnce(t *testing.T) {
	posRepo := newStubPositionRepo()
	lineRepo := newStubPriceLineRepo()
	svc := NewBackfillService(posRepo, lineRepo)
	ctx := context.Background()

	legacyPrice := decimal.NewFromFloat(9.90)
	legacy := &model.Position{Code: "EL-3001", ActiveUnitPrice: &legacyPrice}
	require.NoError(t, posRepo.Create(ctx, legacy))

	alreadyPrice := decimal.NewFromFloat(4.00)
	already := &model.Position{Code: "EL-3002", ActiveUnitPrice: &alreadyPrice}
	require.NoError(t, posRepo.Create(ctx, already))
	require.NoError(t, lineRepo.CreateTx(nil, &model.PriceLine{
		PositionID: already.ID,
		Amount:     alreadyPrice,
		Unit:       model.UnitPiece,
		Status:     model.StatusActive,
		Priority:   model.DefaultPriority,
	}))

	unmirrored := &model.Position{Code: "EL-3003"}
	require.NoError(t, posRepo.Create(ctx, unmirrored))

	report, err := svc.Backfill(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Examined)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Skipped)

	lines, err := lineRepo.ListByPositionTx(nil, legacy.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	l := lines[0]
	assert.True(t, l.Amount.Equal(legacyPrice))
	assert.Equal(t, model.UnitPiece, l.Unit)
	assert.Equal(t, model.DefaultPriority, l.Priority)
	assert.Nil(t, l.QtyFrom)
	assert.Nil(t, l.QtyTo)
	assert.Nil(t, l.ValidFrom)

	// Second run finds the line and skips
	report, err = svc.Backfill(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 2, report.Skipped)
}
