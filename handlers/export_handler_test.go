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

func setupExportRouter(svc *MockExportService) *gin.Engine {
	h := NewExportHandler(svc)
	h.now = func() time.Time { return time.Date(2024, 5, 4, 9, 0, 0, 0, time.UTC) }
	r := newTestRouter("admin-1")
	r.GET("/api/admin/export", h.DownloadExport)
	r.POST("/api/admin/exports", h.CreateExport)
	return r
}

func TestDownloadExport(t *testing.T) {
	svc := new(MockExportService)
	records := []types.FeedbackRecord{*sampleRecord("1", "a@example.com")}
	svc.On("Records", mock.Anything, "2024-05-01", "2024-05-03").Return(records, nil)
	svc.On("RenderCSV", records).Return([]byte("ID,Email\n1,a@example.com\n"), nil)
	svc.On("Filename", "2024-05-01", "2024-05-03", mock.Anything).Return("feedback-2024-05-01_to_2024-05-03.csv")

	w := doJSON(setupExportRouter(svc), http.MethodGet, "/api/admin/export?startDate=2024-05-01&endDate=2024-05-03", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="feedback-2024-05-01_to_2024-05-03.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID,Email\n1,a@example.com\n", w.Body.String())
}

func TestDownloadExport_BadRange(t *testing.T) {
	svc := new(MockExportService)
	svc.On("Records", mock.Anything, "2024-05-03", "").Return(nil, apperrors.ValidationFailed("Both dates are required", "endDate"))

	w := doJSON(setupExportRouter(svc), http.MethodGet, "/api/admin/export?startDate=2024-05-03", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "RenderCSV", mock.Anything)
}

func TestCreateExport(t *testing.T) {
	svc := new(MockExportService)
	svc.On("Upload", mock.Anything, "", "").Return(&types.ExportResponse{
		Key: "exports/feedback-2024-05-04.csv", URL: "https://s3.example.com/x", Records: 3, ExpiresIn: 900,
	}, nil).Once()
	svc.On("Upload", mock.Anything, "", "").Return(nil, apperrors.ServiceUnavailable("Export storage is not configured", "")).Once()
	r := setupExportRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/admin/exports", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"expiresInSeconds":900`)

	w = doJSON(r, http.MethodPost, "/api/admin/exports", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
