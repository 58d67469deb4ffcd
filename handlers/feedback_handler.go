package handlers

import (
	"net/http"

	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles feedback submission and the admin record endpoints.
type FeedbackHandler struct {
	feedbackService FeedbackServiceInterface
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService FeedbackServiceInterface) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// SubmitFeedback godoc
// @Summary      Submit feedback
// @Description  Validates a draft against the current lists and stores it
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      types.Draft  true  "Feedback draft"
// @Success      201   {object}  types.FeedbackRecord
// @Failure      400   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /feedback [post]
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var draft types.Draft
	if !bindJSONOrError(c, &draft) {
		return
	}

	rec, err := h.feedbackService.Submit(c.Request.Context(), draft)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// ListFeedback godoc
// @Summary      List feedback
// @Description  All records, newest first. With email, the single record submitted with that address.
// @Tags         feedback
// @Produce      json
// @Param        email  query     string  false  "Exact submitter email"
// @Success      200    {array}   types.FeedbackRecord
// @Failure      401    {object}  types.ErrorResponse
// @Failure      403    {object}  types.ErrorResponse
// @Failure      404    {object}  types.ErrorResponse
// @Router       /feedback [get]
// @Security     BearerAuth
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	if email, ok := c.GetQuery("email"); ok {
		rec, err := h.feedbackService.FindByEmail(c.Request.Context(), email)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, rec)
		return
	}

	records, err := h.feedbackService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// SuggestEmails godoc
// @Summary      Suggest submitter emails
// @Description  Distinct emails containing the partial input, at most 10
// @Tags         feedback
// @Produce      json
// @Param        email  query     string  false  "Partial email"
// @Success      200    {array}   string
// @Router       /feedback/suggestions [get]
// @Security     BearerAuth
func (h *FeedbackHandler) SuggestEmails(c *gin.Context) {
	emails, err := h.feedbackService.Suggest(c.Request.Context(), c.Query("email"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, emails)
}

// FeedbackByDateRange godoc
// @Summary      Feedback in a date range
// @Description  Records submitted between startDate and endDate inclusive (YYYY-MM-DD)
// @Tags         feedback
// @Produce      json
// @Param        startDate  query     string  true  "First day"
// @Param        endDate    query     string  true  "Last day"
// @Success      200        {array}   types.FeedbackRecord
// @Failure      400        {object}  types.ErrorResponse
// @Router       /feedback/date-range [get]
// @Security     BearerAuth
func (h *FeedbackHandler) FeedbackByDateRange(c *gin.Context) {
	records, err := h.feedbackService.ByDateRange(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetFeedback godoc
// @Summary      Get a feedback record
// @Tags         feedback
// @Produce      json
// @Param        id   path      string  true  "Feedback ID"
// @Success      200  {object}  types.FeedbackRecord
// @Failure      404  {object}  types.ErrorResponse
// @Router       /feedback/{id} [get]
// @Security     BearerAuth
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	rec, err := h.feedbackService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpdateFeedback godoc
// @Summary      Update a feedback record
// @Description  Overwrites the stored content. Lists are not re-checked.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Feedback ID"
// @Param        body  body      types.FeedbackContent  true  "Record content"
// @Success      200   {object}  types.FeedbackRecord
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Router       /feedback/{id} [put]
// @Security     BearerAuth
func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	var content types.FeedbackContent
	if !bindJSONOrError(c, &content) {
		return
	}

	id := c.Param("id")
	rec, err := h.feedbackService.Update(c.Request.Context(), id, content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.GetLogger().Infow("Feedback updated by admin",
		"feedbackID", id,
		"adminID", getAdminIDFromContext(c))
	c.JSON(http.StatusOK, rec)
}

// DeleteFeedback godoc
// @Summary      Delete a feedback record
// @Tags         feedback
// @Param        id   path  string  true  "Feedback ID"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /feedback/{id} [delete]
// @Security     BearerAuth
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	id := c.Param("id")
	if err := h.feedbackService.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	logger.GetLogger().Infow("Feedback deleted by admin",
		"feedbackID", id,
		"adminID", getAdminIDFromContext(c))
	c.Status(http.StatusNoContent)
}

// GetStats godoc
// @Summary      Feedback statistics
// @Description  Per-individual rating averages and recommendation counts
// @Tags         admin
// @Produce      json
// @Success      200  {object}  types.FeedbackStats
// @Router       /admin/stats [get]
// @Security     BearerAuth
func (h *FeedbackHandler) GetStats(c *gin.Context) {
	stats, err := h.feedbackService.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
