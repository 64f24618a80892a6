package service

import (
	"context"
	"testing"

	"registras/internal/dto"
	"registras/internal/pricing"
	"registras/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPositionFixture() (PositionService, *stubPositionRepo, *stubPriceLineRepo) {
	posRepo := newStubPositionRepo()
	lineRepo := newStubPriceLineRepo()
	priceSvc := NewPriceService(lineRepo, posRepo, pricing.FixedClock{Day: testDay("2026-06-01")}, nil, nil)
	return NewPositionService(posRepo, priceSvc, nil), posRepo, lineRepo
}

func TestCreatePositionSeedsBaseLine(t *testing.T) {
	svc, posRepo, lineRepo := newPositionFixture()
	ctx := context.Background()

	price := decimal.NewFromFloat(12.50)
	resp, err := svc.Create(ctx, dto.CreatePositionRequest{
		Code:      "EL-1001",
		Customer:  "Acme",
		Name:      "Bracket",
		UnitPrice: &price,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ActiveUnitPrice)
	assert.True(t, resp.ActiveUnitPrice.Equal(price))

	pos, err := posRepo.FindByCode(ctx, "EL-1001")
	require.NoError(t, err)
	lines, err := lineRepo.ListByPositionTx(nil, pos.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Amount.Equal(price))
}

func TestCreatePositionDuplicateCode(t *testing.T) {
	svc, _, _ := newPositionFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreatePositionRequest{Code: "EL-1001"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto.CreatePositionRequest{Code: "EL-1001"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUpdatePositionPartialAndPrice(t *testing.T) {
	svc, posRepo, _ := newPositionFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreatePositionRequest{
		Code:     "EL-1001",
		Customer: "Acme",
		Name:     "Bracket",
	})
	require.NoError(t, err)

	price := decimal.NewFromFloat(15)
	_, err = svc.Update(ctx, mustParse(t, created.ID), dto.UpdatePositionRequest{
		Name:      strp("Bracket v2"),
		UnitPrice: &price,
	})
	require.NoError(t, err)

	pos, err := posRepo.FindByCode(ctx, "EL-1001")
	require.NoError(t, err)
	assert.Equal(t, "Bracket v2", pos.Name)
	assert.Equal(t, "Acme", pos.Customer) // untouched fields survive
	require.NotNil(t, pos.ActiveUnitPrice)
	assert.True(t, pos.ActiveUnitPrice.Equal(price))
}

func TestDeletePositionNotFound(t *testing.T) {
	svc, _, _ := newPositionFixture()

	err := svc.Delete(context.Background(), newRandomID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
