package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *MemoryTokenStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &MemoryTokenStore{}
	return New(srv.URL+"/api", tokens), tokens
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedbackctl", "token.json")
	store := NewFileTokenStore(path)

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SetToken("abc"))
	token, err = NewFileTokenStore(path).Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	token, err = store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestLogin_StoresToken(t *testing.T) {
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/login":
			var req types.LoginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "admin@example.com", req.Email)
			writeJSON(w, http.StatusOK, types.LoginResponse{Token: "tok-1"})
		case "/api/feedback":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, []types.FeedbackRecord{{ID: "r1"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := c.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)

	token, _ := tokens.Token()
	assert.Equal(t, "tok-1", token)

	records, err := c.ListFeedback(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].ID)

	require.NoError(t, c.Logout())
	_, err = c.ListFeedback(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAdminCall_WithoutTokenSendsNothing(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := c.Stats(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, _, err = c.FindByEmail(context.Background(), "jane@example.com")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestForbidden(t *testing.T) {
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, types.ErrorResponse{Type: "FORBIDDEN", Message: "Admin access required"})
	})
	require.NoError(t, tokens.SetToken("viewer"))

	_, err := c.ListFeedback(context.Background())
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAPIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{
			Type:    "VALIDATION_ERROR",
			Message: "Invalid request payload",
			Fields:  map[string]string{"email": "email is required"},
		})
	})

	_, err := c.SendEmail(context.Background(), types.SendEmailRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Type)
	assert.Equal(t, "email is required", apiErr.Fields["email"])
	assert.Contains(t, apiErr.Error(), "Invalid request payload")
}

func TestAPIError_NonJSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := c.GetLists(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestLookups_NotFoundIsNotAnError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"404", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, types.ErrorResponse{Type: "NOT_FOUND", Message: "Feedback not found"})
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}},
		{"null", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("null"))
		}},
		{"empty object", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{}\n"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, tokens := newTestClient(t, tt.handler)
			require.NoError(t, tokens.SetToken("tok"))

			rec, found, err := c.FindByEmail(context.Background(), "nobody@example.com")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, rec)

			rec, found, err = c.GetFeedback(context.Background(), "missing")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, rec)
		})
	}
}

func TestFindByEmail_Found(t *testing.T) {
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feedback", r.URL.Path)
		assert.Equal(t, "jane+1@example.com", r.URL.Query().Get("email"))
		writeJSON(w, http.StatusOK, types.FeedbackRecord{
			ID:              "r1",
			FeedbackContent: types.FeedbackContent{Email: "jane+1@example.com"},
		})
	})
	require.NoError(t, tokens.SetToken("tok"))

	rec, found, err := c.FindByEmail(context.Background(), "jane+1@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "r1", rec.ID)
}

func TestExport_StreamsCSV(t *testing.T) {
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/export", r.URL.Path)
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("startDate"))
		_, hasEnd := r.URL.Query()["endDate"]
		assert.False(t, hasEnd)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte("id,email\nr1,jane@example.com\n"))
	})
	require.NoError(t, tokens.SetToken("tok"))

	var buf bytes.Buffer
	n, err := c.Export(context.Background(), "2024-05-01", "", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "id,email\nr1,jane@example.com\n", buf.String())
}
