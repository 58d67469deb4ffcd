package handlers

import (
	"net/http"

	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// SettingsHandler serves the admin form defaults and the public form config.
type SettingsHandler struct {
	settingsService SettingsServiceInterface
}

func NewSettingsHandler(settingsService SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetFormDefaults godoc
// @Summary      Get form defaults
// @Description  Contact defaults plus the question, title and newsletter lists
// @Tags         admin
// @Produce      json
// @Success      200  {object}  types.FormSettings
// @Failure      401  {object}  types.ErrorResponse
// @Failure      403  {object}  types.ErrorResponse
// @Router       /admin/form-defaults [get]
// @Security     BearerAuth
func (h *SettingsHandler) GetFormDefaults(c *gin.Context) {
	settings, err := h.settingsService.GetFormDefaults(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SaveFormDefaults godoc
// @Summary      Replace form defaults
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      types.FormDefaults  true  "Form defaults"
// @Success      200   {object}  types.FormSettings
// @Failure      400   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Router       /admin/form-defaults [post]
// @Security     BearerAuth
func (h *SettingsHandler) SaveFormDefaults(c *gin.Context) {
	var req types.FormDefaults
	if !bindJSONOrError(c, &req) {
		return
	}

	settings, err := h.settingsService.SaveFormDefaults(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetFormConfig godoc
// @Summary      Public form configuration
// @Description  Lists, enabled optional fields and contact defaults for rendering the form
// @Tags         feedback
// @Produce      json
// @Success      200  {object}  types.FormConfig
// @Router       /form/config [get]
func (h *SettingsHandler) GetFormConfig(c *gin.Context) {
	cfg, err := h.settingsService.FormConfig(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
