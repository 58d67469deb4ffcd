package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/gin-gonic/gin"
)

// ExportHandler serves spreadsheet exports of feedback records.
type ExportHandler struct {
	exportService ExportServiceInterface
	now           func() time.Time
}

func NewExportHandler(exportService ExportServiceInterface) *ExportHandler {
	return &ExportHandler{exportService: exportService, now: time.Now}
}

// DownloadExport godoc
// @Summary      Download feedback as CSV
// @Description  All records, or the records of an inclusive day range
// @Tags         admin
// @Produce      text/csv
// @Param        startDate  query     string  false  "First day (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "Last day (YYYY-MM-DD)"
// @Success      200        {file}    file
// @Failure      400        {object}  types.ErrorResponse
// @Router       /admin/export [get]
// @Security     BearerAuth
func (h *ExportHandler) DownloadExport(c *gin.Context) {
	start, end := c.Query("startDate"), c.Query("endDate")

	records, err := h.exportService.Records(c.Request.Context(), start, end)
	if err != nil {
		_ = c.Error(err)
		return
	}
	body, err := h.exportService.RenderCSV(records)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filename := h.exportService.Filename(start, end, h.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// CreateExport godoc
// @Summary      Upload a CSV export
// @Description  Stores the export in object storage and returns a presigned download URL
// @Tags         admin
// @Produce      json
// @Param        startDate  query     string  false  "First day (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "Last day (YYYY-MM-DD)"
// @Success      201        {object}  types.ExportResponse
// @Failure      503        {object}  types.ErrorResponse
// @Router       /admin/exports [post]
// @Security     BearerAuth
func (h *ExportHandler) CreateExport(c *gin.Context) {
	resp, err := h.exportService.Upload(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.GetLogger().Infow("Export uploaded",
		"key", resp.Key,
		"records", resp.Records,
		"adminID", getAdminIDFromContext(c))
	c.JSON(http.StatusCreated, resp)
}
