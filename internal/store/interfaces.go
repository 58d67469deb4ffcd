// Package store defines the persistence contracts used by the services.
// Implementations live in subpackages; postgres is the production one.
package store

import (
	"context"
	"time"

	"github.com/feedbackdesk/feedback-backend/types"
)

// ListName identifies one of the administrator-managed ordered lists.
type ListName string

const (
	ListIndividuals       ListName = "individuals"
	ListServices          ListName = "services"
	ListTitleOptions      ListName = "titleOptions"
	ListFeedbackQuestions ListName = "feedbackQuestions"
	ListNewsletterOptions ListName = "newsletterOptions"
)

// FeedbackStore persists submitted feedback records.
type FeedbackStore interface {
	// CreateFeedback stores content and returns the record with its ID and
	// timestamps assigned.
	CreateFeedback(ctx context.Context, content *types.FeedbackContent) (*types.FeedbackRecord, error)
	GetFeedback(ctx context.Context, id string) (*types.FeedbackRecord, error)
	// GetFeedbackByEmail returns the newest record whose email matches
	// case-insensitively, or ErrNotFound.
	GetFeedbackByEmail(ctx context.Context, email string) (*types.FeedbackRecord, error)
	// ListFeedback returns every record, newest first.
	ListFeedback(ctx context.Context) ([]types.FeedbackRecord, error)
	// ListFeedbackBetween returns records with from <= created_at < to, newest first.
	ListFeedbackBetween(ctx context.Context, from, to time.Time) ([]types.FeedbackRecord, error)
	// SuggestEmails returns up to limit distinct emails containing partial.
	SuggestEmails(ctx context.Context, partial string, limit int) ([]string, error)
	// UpdateFeedback overwrites the content of an existing record.
	UpdateFeedback(ctx context.Context, id string, content *types.FeedbackContent) (*types.FeedbackRecord, error)
	DeleteFeedback(ctx context.Context, id string) error
}

// RosterStore persists the selectable lists.
type RosterStore interface {
	// GetRoster returns every list; lists never saved are empty.
	GetRoster(ctx context.Context) (*types.Roster, error)
	ReplaceIndividuals(ctx context.Context, individuals []types.Individual) error
	ReplaceList(ctx context.Context, name ListName, entries []string) error
}

// SettingsStore persists the form defaults. Saving replaces the contact
// defaults and the three form lists in one transaction.
type SettingsStore interface {
	GetFormSettings(ctx context.Context) (*types.FormSettings, error)
	SaveFormSettings(ctx context.Context, defaults types.FormDefaults) (*types.FormSettings, error)
}

// AdminStore persists administrator accounts.
type AdminStore interface {
	GetAdminByEmail(ctx context.Context, email string) (*types.AdminUser, error)
	GetAdmin(ctx context.Context, id string) (*types.AdminUser, error)
	// CreateAdmin returns ErrConflict when the email is taken.
	CreateAdmin(ctx context.Context, email, passwordHash, role string) (*types.AdminUser, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}
