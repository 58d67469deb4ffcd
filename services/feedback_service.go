package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/models/feedback"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// MaxEmailSuggestions caps the suggestion list.
const MaxEmailSuggestions = 10

// RosterProvider supplies the current roster. *RosterService implements it.
type RosterProvider interface {
	GetRoster(ctx context.Context) (*types.Roster, error)
}

// FeedbackService stores and queries feedback records.
type FeedbackService struct {
	store       store.FeedbackStore
	roster      RosterProvider
	caps        types.Capabilities
	notifier    FeedbackNotifier
	location    *time.Location
	submissions *prometheus.CounterVec
	log         *zap.SugaredLogger
}

// NewFeedbackService creates the service. notifier may be nil. The location
// decides which calendar day a timestamp belongs to in date-range queries.
func NewFeedbackService(st store.FeedbackStore, roster RosterProvider, caps types.Capabilities,
	notifier FeedbackNotifier, location *time.Location, reg prometheus.Registerer) *FeedbackService {
	if location == nil {
		location = time.UTC
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_submissions_total",
		Help: "Feedback submissions by outcome",
	}, []string{"outcome"})
	reg.MustRegister(submissions)

	return &FeedbackService{
		store:       st,
		roster:      roster,
		caps:        caps,
		notifier:    notifier,
		location:    location,
		submissions: submissions,
		log:         logger.GetLogger().Named("feedback"),
	}
}

// Submit validates draft against the current roster, stores it and queues
// the admin notification.
func (s *FeedbackService) Submit(ctx context.Context, draft types.Draft) (*types.FeedbackRecord, error) {
	r, err := s.roster.GetRoster(ctx)
	if err != nil {
		s.submissions.WithLabelValues("error").Inc()
		return nil, err
	}

	if errs := feedback.Validate(draft, *r, s.caps); !errs.Empty() {
		s.submissions.WithLabelValues("invalid").Inc()
		s.log.Debugw("Rejected feedback draft", "fields", errs.Keys())
		return nil, errs.Err()
	}

	content := feedback.ToContent(draft, s.caps)
	rec, err := s.store.CreateFeedback(ctx, &content)
	if err != nil {
		s.submissions.WithLabelValues("error").Inc()
		return nil, s.translate(err, "")
	}
	s.submissions.WithLabelValues("stored").Inc()
	s.log.Infow("Stored feedback", "feedbackId", rec.ID, "email", logger.MaskEmail(rec.Email))

	if s.notifier != nil {
		s.notifier.QueueNewFeedback(rec)
	}
	return rec, nil
}

func (s *FeedbackService) Get(ctx context.Context, id string) (*types.FeedbackRecord, error) {
	rec, err := s.store.GetFeedback(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return rec, nil
}

// FindByEmail returns the newest record submitted with exactly this email,
// compared case-insensitively.
func (s *FeedbackService) FindByEmail(ctx context.Context, email string) (*types.FeedbackRecord, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.ValidationFailed("Email is required", "")
	}
	rec, err := s.store.GetFeedbackByEmail(ctx, email)
	if err != nil {
		return nil, s.translate(err, logger.MaskEmail(email))
	}
	return rec, nil
}

// Suggest returns distinct submitter emails containing partial. Blank input
// yields an empty list.
func (s *FeedbackService) Suggest(ctx context.Context, partial string) ([]string, error) {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return []string{}, nil
	}
	emails, err := s.store.SuggestEmails(ctx, partial, MaxEmailSuggestions)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	if emails == nil {
		emails = []string{}
	}
	return emails, nil
}

// ByDateRange returns records created on any day from start to end
// inclusive, both formatted YYYY-MM-DD.
func (s *FeedbackService) ByDateRange(ctx context.Context, start, end string) ([]types.FeedbackRecord, error) {
	r, err := feedback.ParseDateRange(start, end, s.location)
	if err != nil {
		return nil, err
	}
	from, to := r.Bounds()
	records, err := s.store.ListFeedbackBetween(ctx, from, to)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	return nonNilRecords(records), nil
}

// List returns every record, newest first.
func (s *FeedbackService) List(ctx context.Context) ([]types.FeedbackRecord, error) {
	records, err := s.store.ListFeedback(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	return nonNilRecords(records), nil
}

// Update overwrites a stored record. Roster membership is not re-checked.
func (s *FeedbackService) Update(ctx context.Context, id string, content types.FeedbackContent) (*types.FeedbackRecord, error) {
	if errs := feedback.ValidateContent(content); !errs.Empty() {
		return nil, errs.Err()
	}
	content.Email = strings.TrimSpace(content.Email)
	rec, err := s.store.UpdateFeedback(ctx, id, &content)
	if err != nil {
		return nil, s.translate(err, id)
	}
	s.log.Infow("Updated feedback", "feedbackId", id)
	return rec, nil
}

func (s *FeedbackService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteFeedback(ctx, id); err != nil {
		return s.translate(err, id)
	}
	s.log.Infow("Deleted feedback", "feedbackId", id)
	return nil
}

// Stats summarizes ratings per individual and recommendation counts across
// every stored record.
func (s *FeedbackService) Stats(ctx context.Context) (*types.FeedbackStats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return &types.FeedbackStats{
		TotalRecords: len(records),
		Recommend:    feedback.CountRecommendations(records),
		Individuals:  feedback.SummarizeIndividuals(records),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func (s *FeedbackService) translate(err error, id string) error {
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		return errors.NotFound("Feedback", id)
	case stderrors.Is(err, store.ErrConflict):
		return errors.NewConflictError("Feedback conflict", err.Error())
	default:
		return errors.NewDatabaseError(err)
	}
}

func nonNilRecords(in []types.FeedbackRecord) []types.FeedbackRecord {
	if in == nil {
		return []types.FeedbackRecord{}
	}
	return in
}
