package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"registras/internal/apierror"
	"registras/internal/dto"
	"registras/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const quickPriceTTL = 4 * time.Hour

// PriceQueryHandler serves the public quick price lookup by position code.
// Read-only, no authentication; the write path invalidates the cache key
// whenever the mirrored price moves.
type PriceQueryHandler struct {
	repo repository.PositionRepository
	rdb  *redis.Client
}

func NewPriceQueryHandler(repo repository.PositionRepository, rdb *redis.Client) *PriceQueryHandler {
	return &PriceQueryHandler{repo: repo, rdb: rdb}
}

// GetByCode godoc
// @Summary Quick price lookup by position code
// @Tags price
// @Produce json
// @Param code path string true "Position code"
// @Success 200 {object} dto.QuickPriceResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{code} [get]
func (h *PriceQueryHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	ctx := c.Request.Context()
	cacheKey := "price:" + code

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.QuickPriceResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	pos, err := h.repo.FindByCode(ctx, code)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("position not found"))
		return
	}

	resp := dto.QuickPriceResponse{
		Code:      pos.Code,
		Name:      pos.Name,
		Customer:  pos.Customer,
		UnitPrice: pos.ActiveUnitPrice,
	}

	// Populate cache — best effort, ignore errors
	if h.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, quickPriceTTL).Err()
		}
	}

	c.JSON(http.StatusOK, resp)
}
