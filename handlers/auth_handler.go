package handlers

import (
	"net/http"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles admin login and password changes.
type AuthHandler struct {
	authService AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary      Admin login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      types.LoginRequest  true  "Credentials"
// @Success      200   {object}  types.LoginResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      401   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.GetLogger().Infow("Admin login rejected",
			"email", logger.MaskEmail(req.Email),
			"client_ip", c.ClientIP())
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChangePassword godoc
// @Summary      Change the admin password
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      types.ChangePasswordRequest  true  "Current and new password"
// @Success      200   {object}  types.StatusResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      401   {object}  types.ErrorResponse
// @Failure      403   {object}  types.ErrorResponse
// @Router       /admin/change-password [post]
// @Security     BearerAuth
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	adminID := getAdminIDFromContext(c)
	if adminID == "" {
		_ = c.Error(errors.Unauthorized("missing_token", "Authorization required"))
		return
	}

	var req types.ChangePasswordRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), adminID, req.CurrentPassword, req.NewPassword); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.StatusResponse{Status: "Password updated successfully"})
}
