package handlers

import (
	"context"
	"time"

	"github.com/feedbackdesk/feedback-backend/types"
)

// FeedbackServiceInterface defines the feedback operations needed by handlers.
type FeedbackServiceInterface interface {
	Submit(ctx context.Context, draft types.Draft) (*types.FeedbackRecord, error)
	Get(ctx context.Context, id string) (*types.FeedbackRecord, error)
	FindByEmail(ctx context.Context, email string) (*types.FeedbackRecord, error)
	Suggest(ctx context.Context, partial string) ([]string, error)
	ByDateRange(ctx context.Context, start, end string) ([]types.FeedbackRecord, error)
	List(ctx context.Context) ([]types.FeedbackRecord, error)
	Update(ctx context.Context, id string, content types.FeedbackContent) (*types.FeedbackRecord, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*types.FeedbackStats, error)
}

// RosterServiceInterface defines the list operations needed by handlers.
type RosterServiceInterface interface {
	GetLists(ctx context.Context) (*types.ListsResponse, error)
	ReplaceIndividuals(ctx context.Context, list []types.Individual) ([]types.Individual, error)
	ReplaceServices(ctx context.Context, list []string) ([]string, error)
}

// SettingsServiceInterface defines the form settings operations needed by handlers.
type SettingsServiceInterface interface {
	GetFormDefaults(ctx context.Context) (*types.FormSettings, error)
	SaveFormDefaults(ctx context.Context, defaults types.FormDefaults) (*types.FormSettings, error)
	FormConfig(ctx context.Context) (*types.FormConfig, error)
}

// AuthServiceInterface defines the admin account operations needed by handlers.
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*types.LoginResponse, error)
	ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error
}

// ExportServiceInterface defines the export operations needed by handlers.
type ExportServiceInterface interface {
	Records(ctx context.Context, start, end string) ([]types.FeedbackRecord, error)
	RenderCSV(records []types.FeedbackRecord) ([]byte, error)
	Filename(start, end string, now time.Time) string
	Upload(ctx context.Context, start, end string) (*types.ExportResponse, error)
}

// MailQueue queues notification emails. *services.NotificationDispatcher implements it.
type MailQueue interface {
	QueueConfirmation(req types.SendEmailRequest) bool
	QueueFormLink(req types.NotifyOpenRequest) bool
}
