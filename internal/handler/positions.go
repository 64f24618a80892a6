package handler

import (
	"net/http"

	"registras/internal/apierror"
	"registras/internal/dto"
	"registras/internal/service"

	"github.com/gin-gonic/gin"
)

// PositionHandler exposes CRUD over positions.
type PositionHandler struct {
	svc service.PositionService
}

func NewPositionHandler(svc service.PositionService) *PositionHandler {
	return &PositionHandler{svc: svc}
}

// Create godoc
// @Summary Create a position
// @Tags positions
// @Accept json
// @Produce json
// @Param request body dto.CreatePositionRequest true "Position"
// @Success 201 {object} dto.PositionResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/positions [post]
func (h *PositionHandler) Create(c *gin.Context) {
	var req dto.CreatePositionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Get a position by id
// @Tags positions
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {object} dto.PositionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/positions/{id} [get]
func (h *PositionHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByCode godoc
// @Summary Get a position by its unique code
// @Tags positions
// @Produce json
// @Param code path string true "Position code"
// @Success 200 {object} dto.PositionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/positions/by-code/{code} [get]
func (h *PositionHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, apierror.New("missing code"))
		return
	}
	resp, err := h.svc.GetByCode(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary List positions
// @Tags positions
// @Produce json
// @Param code query string false "Exact code"
// @Param customer query string false "Customer substring"
// @Param project query string false "Project substring"
// @Param q query string false "Free text over code, name, customer, project"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.PositionListResponse
// @Router /v1/positions [get]
func (h *PositionHandler) List(c *gin.Context) {
	var filter dto.PositionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Update a position
// @Tags positions
// @Accept json
// @Produce json
// @Param id path string true "Position ID"
// @Param request body dto.UpdatePositionRequest true "Fields to change"
// @Success 200 {object} dto.PositionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/positions/{id} [patch]
func (h *PositionHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePositionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete a position and all its price lines
// @Tags positions
// @Param id path string true "Position ID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/positions/{id} [delete]
func (h *PositionHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
