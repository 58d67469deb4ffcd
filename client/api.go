package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/feedbackdesk/feedback-backend/types"
)

// Login exchanges admin credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/admin/login",
		body:   types.LoginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.tokens.SetToken(resp.Token); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout forgets the stored token.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

func (c *Client) GetLists(ctx context.Context) (*types.ListsResponse, error) {
	var resp types.ListsResponse
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/lists"}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetFormConfig returns the roster, enabled fields and defaults for the public form.
func (c *Client) GetFormConfig(ctx context.Context) (*types.FormConfig, error) {
	var resp types.FormConfig
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/form/config"}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateFeedback posts a draft without local validation. Prefer SubmitFeedback.
func (c *Client) CreateFeedback(ctx context.Context, draft types.Draft) (*types.FeedbackRecord, error) {
	var rec types.FeedbackRecord
	err := c.doJSON(ctx, request{method: http.MethodPost, path: "/feedback", body: draft}, &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) SendEmail(ctx context.Context, req types.SendEmailRequest) (*types.AcceptedResponse, error) {
	var resp types.AcceptedResponse
	err := c.doJSON(ctx, request{method: http.MethodPost, path: "/mail/send-email", body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListFeedback(ctx context.Context) ([]types.FeedbackRecord, error) {
	var records []types.FeedbackRecord
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/feedback", auth: true}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindByEmail returns the record submitted with email, or false when there is none.
func (c *Client) FindByEmail(ctx context.Context, email string) (*types.FeedbackRecord, bool, error) {
	var rec types.FeedbackRecord
	found, err := c.lookup(ctx, request{
		method: http.MethodGet,
		path:   "/feedback",
		query:  url.Values{"email": {email}},
		auth:   true,
	}, &rec)
	if err != nil || !found {
		return nil, false, err
	}
	return &rec, true, nil
}

func (c *Client) GetFeedback(ctx context.Context, id string) (*types.FeedbackRecord, bool, error) {
	var rec types.FeedbackRecord
	found, err := c.lookup(ctx, request{
		method: http.MethodGet,
		path:   "/feedback/" + url.PathEscape(id),
		auth:   true,
	}, &rec)
	if err != nil || !found {
		return nil, false, err
	}
	return &rec, true, nil
}

func (c *Client) SuggestEmails(ctx context.Context, partial string) ([]string, error) {
	emails := []string{}
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		path:   "/feedback/suggestions",
		query:  url.Values{"email": {partial}},
		auth:   true,
	}, &emails)
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (c *Client) FeedbackByDateRange(ctx context.Context, start, end string) ([]types.FeedbackRecord, error) {
	var records []types.FeedbackRecord
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		path:   "/feedback/date-range",
		query:  url.Values{"startDate": {start}, "endDate": {end}},
		auth:   true,
	}, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) UpdateFeedback(ctx context.Context, id string, content types.FeedbackContent) (*types.FeedbackRecord, error) {
	var rec types.FeedbackRecord
	err := c.doJSON(ctx, request{
		method: http.MethodPut,
		path:   "/feedback/" + url.PathEscape(id),
		body:   content,
		auth:   true,
	}, &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) DeleteFeedback(ctx context.Context, id string) error {
	return c.doJSON(ctx, request{
		method: http.MethodDelete,
		path:   "/feedback/" + url.PathEscape(id),
		auth:   true,
	}, nil)
}

func (c *Client) UpdateIndividuals(ctx context.Context, list []types.Individual) ([]types.Individual, error) {
	if list == nil {
		list = []types.Individual{}
	}
	var resp types.UpdateIndividualsResponse
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/lists/individuals",
		body:   types.UpdateIndividualsRequest{UpdatedList: list},
		auth:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.UpdatedList, nil
}

func (c *Client) UpdateServices(ctx context.Context, list []string) ([]string, error) {
	if list == nil {
		list = []string{}
	}
	var resp types.UpdateServicesResponse
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/lists/services",
		body:   types.UpdateServicesRequest{UpdatedList: list},
		auth:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.UpdatedList, nil
}

func (c *Client) GetFormDefaults(ctx context.Context) (*types.FormSettings, error) {
	var resp types.FormSettings
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/admin/form-defaults", auth: true}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SaveFormDefaults(ctx context.Context, defaults types.FormDefaults) (*types.FormSettings, error) {
	var resp types.FormSettings
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/admin/form-defaults",
		body:   defaults,
		auth:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/admin/change-password",
		body:   types.ChangePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword},
		auth:   true,
	}, nil)
}

func (c *Client) NotifyOpen(ctx context.Context, req types.NotifyOpenRequest) (*types.AcceptedResponse, error) {
	var resp types.AcceptedResponse
	err := c.doJSON(ctx, request{method: http.MethodPost, path: "/notify-open", body: req, auth: true}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Stats(ctx context.Context) (*types.FeedbackStats, error) {
	var resp types.FeedbackStats
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/admin/stats", auth: true}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export streams the CSV export to w. Empty bounds export everything.
func (c *Client) Export(ctx context.Context, start, end string, w io.Writer) (int64, error) {
	query := url.Values{}
	if start != "" {
		query.Set("startDate", start)
	}
	if end != "" {
		query.Set("endDate", end)
	}

	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/export", query: query, auth: true})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read export: %w", err)
	}
	return n, nil
}

// UploadExport asks the server to store an export and returns its download link.
func (c *Client) UploadExport(ctx context.Context, start, end string) (*types.ExportResponse, error) {
	query := url.Values{}
	if start != "" {
		query.Set("startDate", start)
	}
	if end != "" {
		query.Set("endDate", end)
	}

	var resp types.ExportResponse
	err := c.doJSON(ctx, request{method: http.MethodPost, path: "/admin/exports", query: query, auth: true}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
