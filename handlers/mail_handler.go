package handlers

import (
	"net/http"

	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// MailHandler queues notification emails. Delivery happens on the worker
// pool; a full queue is reported in the response but is never an error.
type MailHandler struct {
	queue MailQueue
}

func NewMailHandler(queue MailQueue) *MailHandler {
	return &MailHandler{queue: queue}
}

// SendEmail godoc
// @Summary      Send the submission confirmation
// @Description  Fire-and-forget; the stored feedback record is never affected
// @Tags         mail
// @Accept       json
// @Produce      json
// @Param        body  body      types.SendEmailRequest  true  "Recipient"
// @Success      202   {object}  types.AcceptedResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Router       /mail/send-email [post]
func (h *MailHandler) SendEmail(c *gin.Context) {
	var req types.SendEmailRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	queued := h.queue.QueueConfirmation(req)
	if !queued {
		logger.GetLogger().Warnw("Confirmation email not queued",
			"email", logger.MaskEmail(req.Email))
	}
	c.JSON(http.StatusAccepted, types.AcceptedResponse{Status: "accepted", Queued: queued})
}

// NotifyOpen godoc
// @Summary      Announce a generated form link
// @Tags         mail
// @Accept       json
// @Produce      json
// @Param        body  body      types.NotifyOpenRequest  true  "Link"
// @Success      202   {object}  types.AcceptedResponse
// @Failure      400   {object}  types.ErrorResponse
// @Router       /notify-open [post]
// @Security     BearerAuth
func (h *MailHandler) NotifyOpen(c *gin.Context) {
	var req types.NotifyOpenRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	queued := h.queue.QueueFormLink(req)
	c.JSON(http.StatusAccepted, types.AcceptedResponse{Status: "accepted", Queued: queued})
}
