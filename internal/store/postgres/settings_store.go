package postgres

import (
	"context"
	"errors"

	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure SettingsStore implements store.SettingsStore
var _ store.SettingsStore = (*SettingsStore)(nil)

// SettingsStore keeps the contact defaults in the single form_settings row
// and the form lists alongside the roster.
type SettingsStore struct {
	db DBTX
}

// NewSettingsStore creates a new settings store backed by db.
func NewSettingsStore(db DBTX) *SettingsStore {
	return &SettingsStore{db: db}
}

// GetFormSettings returns the stored defaults. Missing rows read as empty.
func (s *SettingsStore) GetFormSettings(ctx context.Context) (*types.FormSettings, error) {
	settings := &types.FormSettings{}
	err := s.db.QueryRow(ctx, `
		SELECT email, organization_name, first_name, last_name, phone_number, updated_at
		FROM form_settings
		WHERE id = 1`).Scan(
		&settings.Email, &settings.OrganizationName, &settings.FirstName,
		&settings.LastName, &settings.PhoneNumber, &settings.UpdatedAt,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError("get form settings", err)
	}

	lists, err := loadLists(ctx, s.db)
	if err != nil {
		return nil, mapError("get form settings", err)
	}
	for name, dst := range map[store.ListName]*[]string{
		store.ListFeedbackQuestions: &settings.FeedbackQuestions,
		store.ListTitleOptions:      &settings.TitleOptions,
		store.ListNewsletterOptions: &settings.NewsletterOptions,
	} {
		list, err := decodeStringList(lists[name])
		if err != nil {
			return nil, err
		}
		*dst = list
	}
	return settings, nil
}

// SaveFormSettings replaces the contact defaults and the three form lists.
func (s *SettingsStore) SaveFormSettings(ctx context.Context, defaults types.FormDefaults) (*types.FormSettings, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, mapError("begin save form settings", err)
	}

	settings := &types.FormSettings{FormDefaults: defaults}
	if err := saveFormSettings(ctx, tx, settings); err != nil {
		_ = tx.Rollback(ctx)
		return nil, mapError("save form settings", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapError("commit form settings", err)
	}

	settings.FeedbackQuestions = textArray(settings.FeedbackQuestions)
	settings.TitleOptions = textArray(settings.TitleOptions)
	settings.NewsletterOptions = textArray(settings.NewsletterOptions)
	return settings, nil
}

func saveFormSettings(ctx context.Context, tx pgx.Tx, settings *types.FormSettings) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO form_settings (id, email, organization_name, first_name, last_name, phone_number, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			organization_name = EXCLUDED.organization_name,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone_number = EXCLUDED.phone_number,
			updated_at = now()
		RETURNING updated_at`,
		settings.Email, settings.OrganizationName, settings.FirstName,
		settings.LastName, settings.PhoneNumber,
	).Scan(&settings.UpdatedAt)
	if err != nil {
		return err
	}

	for _, l := range []struct {
		name    store.ListName
		entries []string
	}{
		{store.ListFeedbackQuestions, settings.FeedbackQuestions},
		{store.ListTitleOptions, settings.TitleOptions},
		{store.ListNewsletterOptions, settings.NewsletterOptions},
	} {
		if err := upsertList(ctx, tx, l.name, textArray(l.entries)); err != nil {
			return err
		}
	}
	return nil
}
