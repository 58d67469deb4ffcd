package services

import (
	"context"
	"strings"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/models/roster"
	"github.com/feedbackdesk/feedback-backend/types"
	"go.uber.org/zap"
)

// SettingsService manages the form defaults: contact defaults plus the
// question, title and newsletter lists.
type SettingsService struct {
	store  store.SettingsStore
	roster *RosterService
	caps   types.Capabilities
	log    *zap.SugaredLogger
}

func NewSettingsService(st store.SettingsStore, rosterService *RosterService, caps types.Capabilities) *SettingsService {
	return &SettingsService{
		store:  st,
		roster: rosterService,
		caps:   caps,
		log:    logger.GetLogger().Named("settings"),
	}
}

// Capabilities returns the optional form fields enabled for this deployment.
func (s *SettingsService) Capabilities() types.Capabilities {
	return s.caps
}

func (s *SettingsService) GetFormDefaults(ctx context.Context) (*types.FormSettings, error) {
	settings, err := s.store.GetFormSettings(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	return settings, nil
}

// SaveFormDefaults replaces every default at once.
func (s *SettingsService) SaveFormDefaults(ctx context.Context, defaults types.FormDefaults) (*types.FormSettings, error) {
	policy := s.roster.Policy()

	var err error
	if defaults.FeedbackQuestions, err = roster.NormalizeStrings(defaults.FeedbackQuestions, policy); err != nil {
		return nil, err
	}
	if defaults.TitleOptions, err = roster.NormalizeStrings(defaults.TitleOptions, policy); err != nil {
		return nil, err
	}
	if defaults.NewsletterOptions, err = roster.NormalizeStrings(defaults.NewsletterOptions, policy); err != nil {
		return nil, err
	}

	defaults.Email = strings.TrimSpace(defaults.Email)
	defaults.OrganizationName = strings.TrimSpace(defaults.OrganizationName)
	defaults.FirstName = strings.TrimSpace(defaults.FirstName)
	defaults.LastName = strings.TrimSpace(defaults.LastName)
	defaults.PhoneNumber = strings.TrimSpace(defaults.PhoneNumber)
	if defaults.Email != "" && !strings.Contains(defaults.Email, "@") {
		return nil, errors.ValidationFields("Invalid form defaults", map[string]string{
			"email": "Email must contain @",
		})
	}

	settings, err := s.store.SaveFormSettings(ctx, defaults)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	s.roster.InvalidateCache(ctx)
	s.log.Infow("Saved form defaults",
		"questions", len(settings.FeedbackQuestions),
		"titles", len(settings.TitleOptions),
		"newsletterOptions", len(settings.NewsletterOptions))
	return settings, nil
}

// FormConfig is what the public form needs to render and validate a draft.
func (s *SettingsService) FormConfig(ctx context.Context) (*types.FormConfig, error) {
	r, err := s.roster.GetRoster(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.GetFormDefaults(ctx)
	if err != nil {
		return nil, err
	}
	return &types.FormConfig{
		Roster:       *r,
		Capabilities: s.caps,
		Defaults:     settings.ContactDefaults,
	}, nil
}
