package handler

import (
	"net/http"

	"registras/internal/apierror"
	"registras/internal/service"

	"github.com/gin-gonic/gin"
)

// ImportHandler exposes the CSV import and the legacy price backfill.
// Both accept dry_run=true to report without committing.
type ImportHandler struct {
	importer service.ImportService
	backfill service.BackfillService
}

func NewImportHandler(importer service.ImportService, backfill service.BackfillService) *ImportHandler {
	return &ImportHandler{importer: importer, backfill: backfill}
}

// ImportCSV godoc
// @Summary Import positions from a CSV file
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param dry_run query bool false "Validate and report without committing"
// @Success 200 {object} dto.ImportReport
// @Failure 400 {object} apierror.APIError
// @Router /v1/imports/csv [post]
func (h *ImportHandler) ImportCSV(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("missing file"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("unreadable file"))
		return
	}
	defer f.Close()

	dryRun := c.Query("dry_run") == "true"
	report, err := h.importer.ImportCSV(c.Request.Context(), f, dryRun)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Backfill godoc
// @Summary Create base price lines for legacy positions
// @Description Positions carrying only the mirrored unit price get a base
// line; positions with any active line are skipped.
// @Tags imports
// @Produce json
// @Param dry_run query bool false "Report without committing"
// @Success 200 {object} dto.BackfillReport
// @Router /v1/imports/backfill [post]
func (h *ImportHandler) Backfill(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"
	report, err := h.backfill.Backfill(c.Request.Context(), dryRun)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
