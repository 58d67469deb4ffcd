package handlers

import (
	"net/http"
	"testing"
	"time"

	apperrors "github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupSettingsRouter(svc *MockSettingsService) *gin.Engine {
	h := NewSettingsHandler(svc)
	r := newTestRouter("admin-1")
	r.GET("/api/admin/form-defaults", h.GetFormDefaults)
	r.POST("/api/admin/form-defaults", h.SaveFormDefaults)
	r.GET("/api/form/config", h.GetFormConfig)
	return r
}

func TestFormDefaults_GetAndSave(t *testing.T) {
	svc := new(MockSettingsService)
	defaults := types.FormDefaults{
		ContactDefaults:   types.ContactDefaults{Email: "office@example.com", OrganizationName: "Acme"},
		FeedbackQuestions: []string{"How did we do?"},
		TitleOptions:      []string{"Mr", "Ms"},
		NewsletterOptions: []string{"Yes", "No"},
	}
	stored := &types.FormSettings{FormDefaults: defaults, UpdatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	svc.On("GetFormDefaults", mock.Anything).Return(stored, nil)
	svc.On("SaveFormDefaults", mock.Anything, defaults).Return(stored, nil)
	r := setupSettingsRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/admin/form-defaults", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"organizationName":"Acme"`)
	assert.Contains(t, w.Body.String(), `"titleOptions":["Mr","Ms"]`)

	w = doJSON(r, http.MethodPost, "/api/admin/form-defaults", defaults)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSaveFormDefaults_InvalidEmail(t *testing.T) {
	svc := new(MockSettingsService)
	svc.On("SaveFormDefaults", mock.Anything, mock.Anything).
		Return(nil, apperrors.ValidationFields("Invalid form defaults", map[string]string{"email": "Email must contain @"}))

	w := doJSON(setupSettingsRouter(svc), http.MethodPost, "/api/admin/form-defaults", `{"email":"office"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email must contain @", decodeError(t, w).Fields["email"])
}

func TestGetFormConfig(t *testing.T) {
	svc := new(MockSettingsService)
	svc.On("FormConfig", mock.Anything).Return(&types.FormConfig{
		Roster:       types.Roster{Services: []string{"Tax"}, TitleOptions: []string{"Mr"}},
		Capabilities: types.AllCapabilities(),
		Defaults:     types.ContactDefaults{OrganizationName: "Acme"},
	}, nil)

	w := doJSON(setupSettingsRouter(svc), http.MethodGet, "/api/form/config", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"servicesList":["Tax"]`)
	assert.Contains(t, w.Body.String(), `"termsAcceptance":true`)
}
