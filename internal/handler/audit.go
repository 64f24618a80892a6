package handler

import (
	"net/http"
	"strconv"
	"time"

	"registras/internal/dto"
	"registras/internal/repository"

	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the mutation history of an entity.
type AuditHandler struct {
	repo repository.AuditRepository
}

func NewAuditHandler(repo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// History godoc
// @Summary Mutation history for a position or price line
// @Tags audit
// @Produce json
// @Param id path string true "Entity ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.AuditListResponse
// @Router /v1/audit/{id} [get]
func (h *AuditHandler) History(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, total, err := h.repo.ListByEntity(c.Request.Context(), id, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	data := make([]dto.AuditRecordItem, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		data = append(data, dto.AuditRecordItem{
			ID:        r.ID.String(),
			Entity:    r.Entity,
			EntityID:  r.EntityID.String(),
			Action:    r.Action,
			Before:    r.Before,
			After:     r.After,
			Actor:     r.Actor,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, dto.AuditListResponse{Data: data, Total: total, Page: page, Limit: limit})
}
