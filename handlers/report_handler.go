package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/tripsplit/tripsplit-backend/errors"
)

// ReportHandler serves archived settlement reports. A nil service means
// archiving is switched off.
type ReportHandler struct {
	reports ReportServiceInterface
}

func NewReportHandler(reports ReportServiceInterface) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GetReportHandler godoc
// @Summary Download link for a closed trip's settlement report
// @Tags summary
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} types.ReportLink
// @Failure 404 {object} middleware.ErrorResponse "No report archived"
// @Failure 502 {object} middleware.ErrorResponse "Report storage unavailable"
// @Router /summary/trip/{id}/report [get]
// @Security BearerAuth
func (h *ReportHandler) GetReportHandler(c *gin.Context) {
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	if h.reports == nil {
		_ = c.Error(apperrors.NotFound("Settlement report", tripID))
		return
	}

	link, err := h.reports.ReportURL(c.Request.Context(), tripID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, link)
}
