package services

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticRoster struct {
	roster *types.Roster
	err    error
}

func (s staticRoster) GetRoster(ctx context.Context) (*types.Roster, error) {
	return s.roster, s.err
}

func serviceRoster() *types.Roster {
	return &types.Roster{
		Individuals:       []types.Individual{{Name: "Mona"}, {Name: "Akhila", Designation: "Paralegal"}},
		Services:          []string{"Tax", "Immigration"},
		TitleOptions:      []string{"Ms.", "Mr."},
		FeedbackQuestions: []string{"How did you hear about us?"},
	}
}

func serviceDraft() types.Draft {
	d := types.Draft{}.
		WithTitle("Ms.").
		WithEmail(" jane@example.com ").
		WithName("Jane", "Doe").
		WithOrganizationName("Acme").
		WithPhoneNumber("555-0100").
		WithServices("Tax").
		WithIndividuals("Mona").
		WithCustomResponse("How did you hear about us?", "A friend").
		WithRecommend(types.RecommendYes).
		WithNewsletter(types.NewsletterNo).
		WithTerms(true)
	for _, dim := range types.RatingDimensions {
		d = d.WithRating(dim, "Mona", 5)
	}
	return d.WithFeedbackFor("Mona", "Quick and kind")
}

func newTestFeedbackService(st *mockFeedbackStore, notifier FeedbackNotifier) *FeedbackService {
	return NewFeedbackService(st, staticRoster{roster: serviceRoster()}, types.AllCapabilities(),
		notifier, time.UTC, prometheus.NewRegistry())
}

func assertAppErrorType(t *testing.T, err error, want apperrors.ErrorType) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok, "expected *AppError, got %T", err)
	assert.Equal(t, want, appErr.Type)
	return appErr
}

func TestFeedbackService_Submit(t *testing.T) {
	st := &mockFeedbackStore{}
	notifier := &mockNotifier{}
	svc := newTestFeedbackService(st, notifier)

	stored := &types.FeedbackRecord{ID: "rec-1", CreatedAt: time.Now()}
	st.On("CreateFeedback", mock.Anything, mock.MatchedBy(func(c *types.FeedbackContent) bool {
		return c.Email == "jane@example.com" &&
			c.Feedback == "Mona: Quick and kind" &&
			c.Title == "Ms." &&
			c.SubscribeNewsletter == "No"
	})).Return(stored, nil)
	notifier.On("QueueNewFeedback", stored).Return(true)

	rec, err := svc.Submit(context.Background(), serviceDraft())
	require.NoError(t, err)
	assert.Equal(t, "rec-1", rec.ID)
	st.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestFeedbackService_Submit_InvalidDraftNeverStored(t *testing.T) {
	st := &mockFeedbackStore{}
	notifier := &mockNotifier{}
	svc := newTestFeedbackService(st, notifier)

	draft := serviceDraft().WithIndividuals("Mona", "Ghost").WithEmail("")
	_, err := svc.Submit(context.Background(), draft)

	appErr := assertAppErrorType(t, err, apperrors.ValidationError)
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "individuals-Ghost")
	st.AssertNotCalled(t, "CreateFeedback", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "QueueNewFeedback", mock.Anything)
}

func TestFeedbackService_Submit_StoreFailure(t *testing.T) {
	st := &mockFeedbackStore{}
	notifier := &mockNotifier{}
	svc := newTestFeedbackService(st, notifier)

	st.On("CreateFeedback", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := svc.Submit(context.Background(), serviceDraft())
	assertAppErrorType(t, err, apperrors.DatabaseError)
	notifier.AssertNotCalled(t, "QueueNewFeedback", mock.Anything)
}

func TestFeedbackService_Submit_RosterUnavailable(t *testing.T) {
	st := &mockFeedbackStore{}
	svc := NewFeedbackService(st, staticRoster{err: apperrors.NewDatabaseError(errors.New("down"))},
		types.AllCapabilities(), nil, nil, prometheus.NewRegistry())

	_, err := svc.Submit(context.Background(), serviceDraft())
	assertAppErrorType(t, err, apperrors.DatabaseError)
}

func TestFeedbackService_Lookups(t *testing.T) {
	st := &mockFeedbackStore{}
	svc := newTestFeedbackService(st, nil)
	ctx := context.Background()

	st.On("GetFeedback", mock.Anything, "missing").Return(nil, store.ErrNotFound)
	_, err := svc.Get(ctx, "missing")
	assertAppErrorType(t, err, apperrors.NotFoundError)

	st.On("GetFeedbackByEmail", mock.Anything, "jane@example.com").
		Return(&types.FeedbackRecord{ID: "rec-1"}, nil)
	rec, err := svc.FindByEmail(ctx, " jane@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", rec.ID)

	_, err = svc.FindByEmail(ctx, "  ")
	assertAppErrorType(t, err, apperrors.ValidationError)
}

func TestFeedbackService_Suggest(t *testing.T) {
	st := &mockFeedbackStore{}
	svc := newTestFeedbackService(st, nil)

	st.On("SuggestEmails", mock.Anything, "jan", MaxEmailSuggestions).Return(nil, nil)

	emails, err := svc.Suggest(context.Background(), " jan ")
	require.NoError(t, err)
	assert.Equal(t, []string{}, emails)

	emails, err = svc.Suggest(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, emails)
	st.AssertNumberOfCalls(t, "SuggestEmails", 1)
}

func TestFeedbackService_ByDateRange(t *testing.T) {
	st := &mockFeedbackStore{}
	svc := newTestFeedbackService(st, nil)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	st.On("ListFeedbackBetween", mock.Anything, from, to).
		Return([]types.FeedbackRecord{{ID: "rec-1"}}, nil)

	records, err := svc.ByDateRange(context.Background(), "2024-05-01", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = svc.ByDateRange(context.Background(), "2024-05-02", "")
	assertAppErrorType(t, err, apperrors.ValidationError)
	st.AssertNumberOfCalls(t, "ListFeedbackBetween", 1)
}

func TestFeedbackService_UpdateSkipsRosterCheck(t *testing.T) {
	st := &mockFeedbackStore{}
	svc := newTestFeedbackService(st, nil)

	content := types.FeedbackContent{
		Email:           "jane@example.com",
		Individuals:     []string{"Former Staff"},
		Professionalism: types.RatingMap{}.Set("Former Staff", 3),
		Recommend:       "No",
	}
	st.On("UpdateFeedback", mock.Anything, "rec-1", mock.Anything).
		Return(&types.FeedbackRecord{ID: "rec-1", FeedbackContent: content}, nil)

	rec, err := svc.Update(context.Background(), "rec-1", content)
	require.NoError(t, err)
	assert.Equal(t, []string{"Former Staff"}, rec.Individuals)

	content.Professionalism = types.RatingMap{}.Set("Former Staff", 9)
	_, err = svc.Update(context.Background(), "rec-1", content)
	appErr := assertAppErrorType(t, err, apperrors.ValidationError)
	assert.Contains(t, appErr.Fields, "professionalism-Former Staff")
	st.AssertNumberOfCalls(t, "UpdateFeedback", 1)
}

func TestFeedbackService_Delete(t *testing.T) {
	st := &mockFeedbackStore{}
	svc := newTestFeedbackService(st, nil)

	st.On("DeleteFeedback", mock.Anything, "rec-1").Return(nil)
	st.On("DeleteFeedback", mock.Anything, "rec-2").Return(store.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), "rec-1"))
	assertAppErrorType(t, svc.Delete(context.Background(), "rec-2"), apperrors.NotFoundError)
}

func TestFeedbackService_Stats(t *testing.T) {
	st := &mockFeedbackStore{}
	svc := newTestFeedbackService(st, nil)

	st.On("ListFeedback", mock.Anything).Return([]types.FeedbackRecord{
		{FeedbackContent: types.FeedbackContent{
			Individuals:     []string{"Mona"},
			Professionalism: types.RatingMap{}.Set("Mona", 4),
			Recommend:       "Yes",
		}},
		{FeedbackContent: types.FeedbackContent{
			Individuals:     []string{"Mona"},
			Professionalism: types.RatingMap{}.Set("Mona", 5),
			Recommend:       "No",
		}},
	}, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRecords)
	assert.Equal(t, 1, stats.Recommend["Yes"])
	require.Len(t, stats.Individuals, 1)
	assert.Equal(t, 4.5, *stats.Individuals[0].Professionalism)
}
