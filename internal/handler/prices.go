package handler

import (
	"net/http"

	"registras/internal/dto"
	"registras/internal/service"

	"github.com/gin-gonic/gin"
)

// PriceHandler exposes the price line lifecycle: create, update, delete,
// list, the base price shortcut, and quantity resolution.
type PriceHandler struct {
	svc service.PriceService
}

func NewPriceHandler(svc service.PriceService) *PriceHandler {
	return &PriceHandler{svc: svc}
}

// Create godoc
// @Summary Add a price line to a position
// @Tags prices
// @Accept json
// @Produce json
// @Param id path string true "Position ID"
// @Param request body dto.PriceLineRequest true "Price line"
// @Success 201 {object} dto.PriceLineResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/positions/{id}/prices [post]
func (h *PriceHandler) Create(c *gin.Context) {
	positionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.PriceLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreatePrice(c.Request.Context(), positionID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary Replace a price line
// @Tags prices
// @Accept json
// @Produce json
// @Param id path string true "Price line ID"
// @Param request body dto.PriceLineRequest true "Price line"
// @Success 200 {object} dto.PriceLineResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/prices/{id} [put]
func (h *PriceHandler) Update(c *gin.Context) {
	lineID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.PriceLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdatePrice(c.Request.Context(), lineID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Physically remove a price line
// @Tags prices
// @Param id path string true "Price line ID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/prices/{id} [delete]
func (h *PriceHandler) Delete(c *gin.Context) {
	lineID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePrice(c.Request.Context(), lineID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List godoc
// @Summary List a position's price lines
// @Tags prices
// @Produce json
// @Param id path string true "Position ID"
// @Param status query string false "active or historical"
// @Param unit query string false "Unit filter"
// @Param as_of query string false "Only lines valid on this date (YYYY-MM-DD)"
// @Success 200 {object} dto.PriceLineListResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/positions/{id}/prices [get]
func (h *PriceHandler) List(c *gin.Context) {
	positionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var filter dto.PriceLineFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListPrices(c.Request.Context(), positionID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetBase godoc
// @Summary Set the position's base unit price
// @Description Updates the catch-all base line, creating it when absent.
// @Tags prices
// @Accept json
// @Produce json
// @Param id path string true "Position ID"
// @Param request body dto.SetBasePriceRequest true "Amount"
// @Success 200 {object} dto.PriceLineResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/positions/{id}/price [put]
func (h *PriceHandler) SetBase(c *gin.Context) {
	positionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SetBasePriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetBaseUnitPrice(c.Request.Context(), positionID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resolve godoc
// @Summary Resolve the applicable price for a quantity
// @Description Returns the single active line covering the quantity on the
// given date, or a null line when nothing covers it.
// @Tags prices
// @Produce json
// @Param id path string true "Position ID"
// @Param qty query int true "Quantity"
// @Param unit query string false "Unit, defaults to unit (piece)"
// @Param as_of query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ResolveResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/positions/{id}/prices/resolve [get]
func (h *PriceHandler) Resolve(c *gin.Context) {
	positionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var q dto.ResolveQuery
	if !bindQuery(c, &q) {
		return
	}
	line, err := h.svc.ResolveActivePrice(c.Request.Context(), positionID, q.Qty, q.Unit, q.AsOf)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResolveResponse{Line: line})
}
