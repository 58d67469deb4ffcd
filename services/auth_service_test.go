package services

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const authTestSecret = "test-secret-key-that-is-long-enough-for-testing"

func newTestAuthService(st *mockAdminStore) *AuthService {
	svc := NewAuthService(st, authTestSecret, time.Hour)
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func testAdmin(t *testing.T, password string) *types.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &types.AdminUser{ID: "admin-1", Email: "admin@example.com", PasswordHash: string(hash), Role: types.RoleAdmin}
}

func TestAuthService_Login(t *testing.T) {
	st := &mockAdminStore{}
	svc := newTestAuthService(st)
	st.On("GetAdminByEmail", mock.Anything, "admin@example.com").Return(testAdmin(t, "correct-horse"), nil)

	resp, err := svc.Login(context.Background(), " admin@example.com ", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, types.RoleAdmin, claims.Role)
}

func TestAuthService_Login_Failures(t *testing.T) {
	st := &mockAdminStore{}
	svc := newTestAuthService(st)
	st.On("GetAdminByEmail", mock.Anything, "admin@example.com").Return(testAdmin(t, "correct-horse"), nil)
	st.On("GetAdminByEmail", mock.Anything, "nobody@example.com").Return(nil, store.ErrNotFound)
	st.On("GetAdminByEmail", mock.Anything, "broken@example.com").Return(nil, errors.New("db down"))

	_, err := svc.Login(context.Background(), "admin@example.com", "wrong")
	wrongPassword := assertAppErrorType(t, err, apperrors.AuthError)

	_, err = svc.Login(context.Background(), "nobody@example.com", "whatever")
	unknownUser := assertAppErrorType(t, err, apperrors.AuthError)
	assert.Equal(t, wrongPassword.Message, unknownUser.Message)

	_, err = svc.Login(context.Background(), "broken@example.com", "whatever")
	assertAppErrorType(t, err, apperrors.DatabaseError)
}

func TestAuthService_ChangePassword(t *testing.T) {
	st := &mockAdminStore{}
	svc := newTestAuthService(st)
	admin := testAdmin(t, "correct-horse")
	st.On("GetAdmin", mock.Anything, "admin-1").Return(admin, nil)

	var newHash string
	st.On("UpdatePasswordHash", mock.Anything, "admin-1", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { newHash = args.String(2) }).
		Return(nil)

	require.NoError(t, svc.ChangePassword(context.Background(), "admin-1", "correct-horse", "battery-staple"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("battery-staple")))
}

func TestAuthService_ChangePassword_Rejections(t *testing.T) {
	st := &mockAdminStore{}
	svc := newTestAuthService(st)
	st.On("GetAdmin", mock.Anything, "admin-1").Return(testAdmin(t, "correct-horse"), nil)
	st.On("GetAdmin", mock.Anything, "gone").Return(nil, store.ErrNotFound)

	err := svc.ChangePassword(context.Background(), "admin-1", "wrong", "battery-staple")
	appErr := assertAppErrorType(t, err, apperrors.ForbiddenError)
	assert.Equal(t, 403, appErr.HTTPStatus)

	err = svc.ChangePassword(context.Background(), "admin-1", "correct-horse", "short")
	assertAppErrorType(t, err, apperrors.ValidationError)

	err = svc.ChangePassword(context.Background(), "gone", "x", "battery-staple")
	assertAppErrorType(t, err, apperrors.NotFoundError)

	st.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_SeedAdmin(t *testing.T) {
	t.Run("creates missing admin", func(t *testing.T) {
		st := &mockAdminStore{}
		svc := newTestAuthService(st)
		st.On("GetAdminByEmail", mock.Anything, "admin@example.com").Return(nil, store.ErrNotFound)
		st.On("CreateAdmin", mock.Anything, "admin@example.com", mock.AnythingOfType("string"), types.RoleAdmin).
			Return(&types.AdminUser{ID: "admin-1"}, nil)

		require.NoError(t, svc.SeedAdmin(context.Background(), "admin@example.com", "correct-horse"))
		st.AssertExpectations(t)
	})

	t.Run("existing admin untouched", func(t *testing.T) {
		st := &mockAdminStore{}
		svc := newTestAuthService(st)
		st.On("GetAdminByEmail", mock.Anything, "admin@example.com").Return(testAdmin(t, "x"), nil)

		require.NoError(t, svc.SeedAdmin(context.Background(), "admin@example.com", "correct-horse"))
		st.AssertNotCalled(t, "CreateAdmin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent create is fine", func(t *testing.T) {
		st := &mockAdminStore{}
		svc := newTestAuthService(st)
		st.On("GetAdminByEmail", mock.Anything, "admin@example.com").Return(nil, store.ErrNotFound)
		st.On("CreateAdmin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, store.ErrConflict)

		assert.NoError(t, svc.SeedAdmin(context.Background(), "admin@example.com", "correct-horse"))
	})

	t.Run("empty email disables seeding", func(t *testing.T) {
		st := &mockAdminStore{}
		svc := newTestAuthService(st)
		assert.NoError(t, svc.SeedAdmin(context.Background(), "", ""))
		st.AssertNotCalled(t, "GetAdminByEmail", mock.Anything, mock.Anything)
	})
}
