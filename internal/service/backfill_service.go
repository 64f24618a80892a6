package service

import (
	"context"

	"registras/internal/dto"
	"registras/internal/model"
	"registras/internal/pricing"
	"registras/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// BackfillService materializes price lines for legacy positions that carry
// only the mirrored unit price column. Positions that already have any
// active line are left alone.
type BackfillService interface {
	Backfill(ctx context.Context, dryRun bool) (*dto.BackfillReport, error)
}

type backfillService struct {
	posRepo  repository.PositionRepository
	lineRepo repository.PriceLineRepository
}

func NewBackfillService(posRepo repository.PositionRepository, lineRepo repository.PriceLineRepository) BackfillService {
	return &backfillService{posRepo: posRepo, lineRepo: lineRepo}
}

func (s *backfillService) Backfill(ctx context.Context, dryRun bool) (*dto.BackfillReport, error) {
	report := &dto.BackfillReport{DryRun: dryRun}

	txErr := runBatchTx(ctx, s.posRepo.DB(), dryRun, func(tx *gorm.DB) error {
		positions, err := s.posRepo.ListMirroredTx(tx)
		if err != nil {
			return err
		}
		report.Examined = len(positions)

		for i := range positions {
			pos := &positions[i]
			lines, err := s.lineRepo.ListByPositionTx(tx, pos.ID)
			if err != nil {
				return err
			}
			if hasActiveLine(lines) {
				report.Skipped++
				continue
			}

			line := &model.PriceLine{
				PositionID: pos.ID,
				Amount:     *pos.ActiveUnitPrice,
				Unit:       model.UnitPiece,
				Status:     model.StatusActive,
				Priority:   model.DefaultPriority,
				Note:       "backfilled",
			}
			if verr := pricing.ValidateShape(line); verr != nil {
				return verr
			}
			if err := s.lineRepo.CreateTx(tx, line); err != nil {
				return err
			}
			report.Created++
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("examined", report.Examined).
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Bool("dry_run", dryRun).
		Msg("price backfill finished")
	return report, nil
}

func hasActiveLine(lines []model.PriceLine) bool {
	for i := range lines {
		if lines[i].Status == model.StatusActive {
			return true
		}
	}
	return false
}
