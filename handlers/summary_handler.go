package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tripsplit/tripsplit-backend/logger"
)

// SummaryHandler exposes trip settlement and closure.
type SummaryHandler struct {
	summaryService SummaryServiceInterface
}

func NewSummaryHandler(summaryService SummaryServiceInterface) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// GetTripSummaryHandler godoc
// @Summary Get the settlement of a trip
// @Tags summary
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} types.TripSummary
// @Failure 400 {object} middleware.ErrorResponse "Invalid trip ID"
// @Failure 404 {object} middleware.ErrorResponse "Trip not found"
// @Router /summary/trip/{id} [get]
// @Security BearerAuth
func (h *SummaryHandler) GetTripSummaryHandler(c *gin.Context) {
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}

	summary, err := h.summaryService.ComputeSummary(c.Request.Context(), tripID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CloseTripHandler godoc
// @Summary Close a trip and email the settlement to its participants
// @Tags summary
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} types.TripCloseResult
// @Failure 404 {object} middleware.ErrorResponse "Trip not found"
// @Failure 409 {object} middleware.ErrorResponse "Trip already closed or being closed"
// @Failure 429 {object} middleware.ErrorResponse "Too many requests"
// @Router /summary/trip/{id}/close [post]
// @Security BearerAuth
func (h *SummaryHandler) CloseTripHandler(c *gin.Context) {
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}

	result, err := h.summaryService.CloseTrip(c.Request.Context(), tripID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.GetLogger().Infow("Trip closed via API",
		"tripId", tripID,
		"userID", getUserIDFromContext(c),
		"emailsSent", result.EmailsSent)
	c.JSON(http.StatusOK, result)
}
