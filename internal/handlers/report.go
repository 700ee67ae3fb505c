package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskr/taskr-api/internal/dto"
	apierrors "github.com/taskr/taskr-api/internal/errors"
	"github.com/taskr/taskr-api/internal/services"
)

// ReportHandler serves per-user task reports.
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GetReport returns created, assigned, completed and incompleted counts for
// the user named in the path.
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.reportService.ForUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
			return
		}
		_ = c.Error(err)
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToReportDTO(*report))
}
