package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupFeedbackRouter(svc *MockFeedbackService) *gin.Engine {
	h := NewFeedbackHandler(svc)
	r := newTestRouter("admin-1")
	r.POST("/api/feedback", h.SubmitFeedback)
	r.GET("/api/feedback", h.ListFeedback)
	r.GET("/api/feedback/suggestions", h.SuggestEmails)
	r.GET("/api/feedback/date-range", h.FeedbackByDateRange)
	r.GET("/api/feedback/:id", h.GetFeedback)
	r.PUT("/api/feedback/:id", h.UpdateFeedback)
	r.DELETE("/api/feedback/:id", h.DeleteFeedback)
	r.GET("/api/admin/stats", h.GetStats)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleRecord(id, email string) *types.FeedbackRecord {
	return &types.FeedbackRecord{
		ID: id,
		FeedbackContent: types.FeedbackContent{
			Email:           email,
			FirstName:       "Jane",
			LastName:        "Doe",
			Individuals:     []string{"Akhila"},
			Professionalism: types.RatingMap{}.Set("Akhila", 5),
			Recommend:       "Yes",
		},
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSubmitFeedback_Created(t *testing.T) {
	svc := new(MockFeedbackService)
	rec := sampleRecord("fb-1", "jane@example.com")
	svc.On("Submit", mock.Anything, mock.MatchedBy(func(d types.Draft) bool {
		v, ok := d.Professionalism.Get("Akhila")
		return d.Email == "jane@example.com" && ok && v == 5 && d.Recommend == types.Recommendation("Yes")
	})).Return(rec, nil)

	w := doJSON(setupFeedbackRouter(svc), http.MethodPost, "/api/feedback",
		`{"email":"jane@example.com","individuals":["Akhila"],"professionalism":{"Akhila":"5"},"recommend":"Yes"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got types.FeedbackRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "fb-1", got.ID)
	svc.AssertExpectations(t)
}

func TestSubmitFeedback_ValidationFields(t *testing.T) {
	svc := new(MockFeedbackService)
	svc.On("Submit", mock.Anything, mock.Anything).Return(nil,
		apperrors.ValidationFields("Please fill out all required fields", map[string]string{
			"email":          "Email is required",
			"recommendation": "Please choose an option",
		}))

	w := doJSON(setupFeedbackRouter(svc), http.MethodPost, "/api/feedback", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Please fill out all required fields", resp.Message)
	assert.Contains(t, resp.Fields, "email")
	assert.Contains(t, resp.Fields, "recommendation")
}

func TestSubmitFeedback_MalformedJSON(t *testing.T) {
	svc := new(MockFeedbackService)

	w := doJSON(setupFeedbackRouter(svc), http.MethodPost, "/api/feedback", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Type)
	svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestListFeedback(t *testing.T) {
	svc := new(MockFeedbackService)
	svc.On("List", mock.Anything).Return([]types.FeedbackRecord{
		*sampleRecord("2", "b@example.com"),
		*sampleRecord("1", "a@example.com"),
	}, nil)

	w := doJSON(setupFeedbackRouter(svc), http.MethodGet, "/api/feedback", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []types.FeedbackRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
}

func TestListFeedback_ByEmail(t *testing.T) {
	svc := new(MockFeedbackService)
	svc.On("FindByEmail", mock.Anything, "jane@example.com").Return(sampleRecord("1", "jane@example.com"), nil)
	svc.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.NotFound("Feedback", "n***@example.com"))
	r := setupFeedbackRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/feedback?email=jane@example.com", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"1"`)

	w = doJSON(r, http.MethodGet, "/api/feedback?email=nobody@example.com", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertNotCalled(t, "List", mock.Anything)
}

func TestSuggestEmails(t *testing.T) {
	svc := new(MockFeedbackService)
	svc.On("Suggest", mock.Anything, "jan").Return([]string{"jane@example.com"}, nil)
	svc.On("Suggest", mock.Anything, "").Return([]string{}, nil)
	r := setupFeedbackRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/feedback/suggestions?email=jan", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["jane@example.com"]`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/feedback/suggestions", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestFeedbackByDateRange(t *testing.T) {
	svc := new(MockFeedbackService)
	svc.On("ByDateRange", mock.Anything, "2024-05-01", "2024-05-03").Return([]types.FeedbackRecord{*sampleRecord("1", "a@example.com")}, nil)
	svc.On("ByDateRange", mock.Anything, "", "2024-05-03").Return(nil, apperrors.ValidationFailed("Both dates are required", "startDate"))
	r := setupFeedbackRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/feedback/date-range?startDate=2024-05-01&endDate=2024-05-03", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/feedback/date-range?endDate=2024-05-03", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUpdateDeleteFeedback(t *testing.T) {
	svc := new(MockFeedbackService)
	updated := sampleRecord("fb-1", "new@example.com")
	svc.On("Get", mock.Anything, "fb-1").Return(sampleRecord("fb-1", "jane@example.com"), nil)
	svc.On("Get", mock.Anything, "missing").Return(nil, apperrors.NotFound("Feedback", "missing"))
	svc.On("Update", mock.Anything, "fb-1", mock.MatchedBy(func(c types.FeedbackContent) bool {
		return c.Email == "new@example.com"
	})).Return(updated, nil)
	svc.On("Delete", mock.Anything, "fb-1").Return(nil)
	r := setupFeedbackRouter(svc)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/api/feedback/fb-1", nil).Code)

	w := doJSON(r, http.MethodGet, "/api/feedback/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Type)

	w = doJSON(r, http.MethodPut, "/api/feedback/fb-1", updated.FeedbackContent)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new@example.com")

	w = doJSON(r, http.MethodDelete, "/api/feedback/fb-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	svc.AssertExpectations(t)
}

func TestGetStats(t *testing.T) {
	svc := new(MockFeedbackService)
	avg := 4.5
	svc.On("Stats", mock.Anything).Return(&types.FeedbackStats{
		TotalRecords: 2,
		Recommend:    map[string]int{"Yes": 2, "No": 0, "Maybe": 0},
		Individuals:  []types.IndividualSummary{{Name: "Akhila", Records: 2, Professionalism: &avg}},
	}, nil)

	w := doJSON(setupFeedbackRouter(svc), http.MethodGet, "/api/admin/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got types.FeedbackStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.TotalRecords)
	require.Len(t, got.Individuals, 1)
	assert.Nil(t, got.Individuals[0].ResponseTime)
}
