package service

import (
	"context"
	"encoding/json"
	"time"

	"registras/internal/dto"
	"registras/internal/model"
	"registras/internal/repository"
	"registras/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PositionService is the CRUD surface around positions. Price mutations are
// delegated to the price service so the mirror and base line never drift:
// a unit_price on create/update goes through the base-line shortcut, not a
// raw column write.
type PositionService interface {
	Create(ctx context.Context, req dto.CreatePositionRequest) (*dto.PositionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.PositionResponse, error)
	GetByCode(ctx context.Context, code string) (*dto.PositionResponse, error)
	List(ctx context.Context, filter dto.PositionFilter) (*dto.PositionListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePositionRequest) (*dto.PositionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type positionService struct {
	repo       repository.PositionRepository
	prices     PriceService
	dispatcher *worker.Dispatcher
}

func NewPositionService(repo repository.PositionRepository, prices PriceService, dispatcher *worker.Dispatcher) PositionService {
	return &positionService{repo: repo, prices: prices, dispatcher: dispatcher}
}

func (s *positionService) Create(ctx context.Context, req dto.CreatePositionRequest) (*dto.PositionResponse, error) {
	p := &model.Position{
		Code:          req.Code,
		Customer:      req.Customer,
		Project:       req.Project,
		Name:          req.Name,
		Metal:         req.Metal,
		Area:          req.Area,
		Weight:        req.Weight,
		Coating:       req.Coating,
		Color:         req.Color,
		PackagingType: req.PackagingType,
		Packaging:     req.Packaging,
		Note:          req.Note,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if req.UnitPrice != nil {
		if _, err := s.prices.SetBaseUnitPrice(ctx, p.ID, *req.UnitPrice); err != nil {
			return nil, err
		}
		p.ActiveUnitPrice = req.UnitPrice
	}

	s.audit(ctx, p.ID, "create", nil, positionSnapshot(p))
	return positionToResponse(p), nil
}

func (s *positionService) GetByID(ctx context.Context, id uuid.UUID) (*dto.PositionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return positionToResponse(p), nil
}

func (s *positionService) GetByCode(ctx context.Context, code string) (*dto.PositionResponse, error) {
	p, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return positionToResponse(p), nil
}

func (s *positionService) List(ctx context.Context, filter dto.PositionFilter) (*dto.PositionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	positions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PositionResponse, 0, len(positions))
	for i := range positions {
		data = append(data, *positionToResponse(&positions[i]))
	}
	return &dto.PositionListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *positionService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePositionRequest) (*dto.PositionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := positionSnapshot(p)

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&p.Customer, req.Customer)
	applyString(&p.Project, req.Project)
	applyString(&p.Name, req.Name)
	applyString(&p.Metal, req.Metal)
	applyString(&p.Area, req.Area)
	applyString(&p.Weight, req.Weight)
	applyString(&p.Coating, req.Coating)
	applyString(&p.Color, req.Color)
	applyString(&p.PackagingType, req.PackagingType)
	applyString(&p.Packaging, req.Packaging)
	applyString(&p.Note, req.Note)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if req.UnitPrice != nil {
		if _, err := s.prices.SetBaseUnitPrice(ctx, p.ID, *req.UnitPrice); err != nil {
			return nil, err
		}
		p.ActiveUnitPrice = req.UnitPrice
	}

	s.audit(ctx, p.ID, "update", before, positionSnapshot(p))
	return positionToResponse(p), nil
}

// Delete removes the position and, via the FK cascade, all its price lines.
func (s *positionService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, id, "delete", positionSnapshot(p), nil)
	return nil
}

func (s *positionService) audit(ctx context.Context, id uuid.UUID, action string, before, after *string) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.EnqueueAudit(ctx, worker.AuditEvent{
		Entity:   "position",
		EntityID: id,
		Action:   action,
		Before:   before,
		After:    after,
	})
	if err != nil {
		log.Warn().Str("action", action).Err(err).Msg("failed to enqueue audit event")
	}
}

func positionToResponse(p *model.Position) *dto.PositionResponse {
	return &dto.PositionResponse{
		ID:              p.ID.String(),
		Code:            p.Code,
		Customer:        p.Customer,
		Project:         p.Project,
		Name:            p.Name,
		Metal:           p.Metal,
		Area:            p.Area,
		Weight:          p.Weight,
		Coating:         p.Coating,
		Color:           p.Color,
		PackagingType:   p.PackagingType,
		Packaging:       p.Packaging,
		Note:            p.Note,
		ActiveUnitPrice: p.ActiveUnitPrice,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func positionSnapshot(p *model.Position) *string {
	b, err := json.Marshal(positionToResponse(p))
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
