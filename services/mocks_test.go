package services

import (
	"context"
	"io"
	"time"

	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/stretchr/testify/mock"
)

type mockFeedbackStore struct {
	mock.Mock
}

func (m *mockFeedbackStore) CreateFeedback(ctx context.Context, content *types.FeedbackContent) (*types.FeedbackRecord, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FeedbackRecord), args.Error(1)
}

func (m *mockFeedbackStore) GetFeedback(ctx context.Context, id string) (*types.FeedbackRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FeedbackRecord), args.Error(1)
}

func (m *mockFeedbackStore) GetFeedbackByEmail(ctx context.Context, email string) (*types.FeedbackRecord, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FeedbackRecord), args.Error(1)
}

func (m *mockFeedbackStore) ListFeedback(ctx context.Context) ([]types.FeedbackRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.FeedbackRecord), args.Error(1)
}

func (m *mockFeedbackStore) ListFeedbackBetween(ctx context.Context, from, to time.Time) ([]types.FeedbackRecord, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.FeedbackRecord), args.Error(1)
}

func (m *mockFeedbackStore) SuggestEmails(ctx context.Context, partial string, limit int) ([]string, error) {
	args := m.Called(ctx, partial, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFeedbackStore) UpdateFeedback(ctx context.Context, id string, content *types.FeedbackContent) (*types.FeedbackRecord, error) {
	args := m.Called(ctx, id, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FeedbackRecord), args.Error(1)
}

func (m *mockFeedbackStore) DeleteFeedback(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockRosterStore struct {
	mock.Mock
}

func (m *mockRosterStore) GetRoster(ctx context.Context) (*types.Roster, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Roster), args.Error(1)
}

func (m *mockRosterStore) ReplaceIndividuals(ctx context.Context, individuals []types.Individual) error {
	return m.Called(ctx, individuals).Error(0)
}

func (m *mockRosterStore) ReplaceList(ctx context.Context, name store.ListName, entries []string) error {
	return m.Called(ctx, name, entries).Error(0)
}

type mockSettingsStore struct {
	mock.Mock
}

func (m *mockSettingsStore) GetFormSettings(ctx context.Context) (*types.FormSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormSettings), args.Error(1)
}

func (m *mockSettingsStore) SaveFormSettings(ctx context.Context, defaults types.FormDefaults) (*types.FormSettings, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormSettings), args.Error(1)
}

type mockAdminStore struct {
	mock.Mock
}

func (m *mockAdminStore) GetAdminByEmail(ctx context.Context, email string) (*types.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AdminUser), args.Error(1)
}

func (m *mockAdminStore) GetAdmin(ctx context.Context, id string) (*types.AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AdminUser), args.Error(1)
}

func (m *mockAdminStore) CreateAdmin(ctx context.Context, email, passwordHash, role string) (*types.AdminUser, error) {
	args := m.Called(ctx, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AdminUser), args.Error(1)
}

func (m *mockAdminStore) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendSubmissionConfirmation(ctx context.Context, req types.SendEmailRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockMailer) SendNewFeedbackNotification(ctx context.Context, rec *types.FeedbackRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockMailer) SendFormLink(ctx context.Context, req types.NotifyOpenRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) QueueNewFeedback(rec *types.FeedbackRecord) bool {
	return m.Called(rec).Bool(0)
}

// inlineJobs runs jobs synchronously so assertions can follow Submit.
type inlineJobs struct {
	accept bool
	errs   []error
}

func (j *inlineJobs) Submit(job Job) bool {
	if !j.accept {
		return false
	}
	j.errs = append(j.errs, job.Execute(context.Background()))
	return true
}

type memoryStorage struct {
	saved   map[string][]byte
	saveErr error
	urlBase string
	ttl     time.Duration
}

func (s *memoryStorage) Key(name string) string { return "exports/" + name }

func (s *memoryStorage) Save(ctx context.Context, key, contentType string, body io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[key] = data
	return nil
}

func (s *memoryStorage) GetURL(ctx context.Context, key string) (string, error) {
	return s.urlBase + key, nil
}

func (s *memoryStorage) PresignTTL() time.Duration { return s.ttl }
