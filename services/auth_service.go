package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/internal/auth"
	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentialsMessage = "Invalid email or password"

// AuthService logs administrators in and manages their passwords.
type AuthService struct {
	store      store.AdminStore
	secretKey  string
	tokenTTL   time.Duration
	bcryptCost int
	log        *zap.SugaredLogger
}

func NewAuthService(st store.AdminStore, secretKey string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:      st,
		secretKey:  secretKey,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		log:        logger.GetLogger().Named("auth"),
	}
}

// Login checks the credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	email = strings.TrimSpace(email)
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			s.log.Infow("Login for unknown admin", "email", logger.MaskEmail(email))
			return nil, errors.AuthenticationFailed(invalidCredentialsMessage)
		}
		return nil, errors.NewDatabaseError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.log.Infow("Login with wrong password", "email", logger.MaskEmail(email))
		return nil, errors.AuthenticationFailed(invalidCredentialsMessage)
	}

	token, expiresAt, err := auth.GenerateJWT(admin.ID, admin.Email, admin.Role, s.secretKey, s.tokenTTL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ServerError, "Failed to issue token")
	}
	s.log.Infow("Admin logged in", "adminId", admin.ID)
	return &types.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken returns the claims of a valid admin token.
func (s *AuthService) ValidateToken(token string) (*auth.AdminClaims, error) {
	return auth.ValidateJWT(token, s.secretKey)
}

// ChangePassword replaces the password of adminID. A wrong current password
// is reported as forbidden, not unauthenticated: the caller holds a valid token.
func (s *AuthService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	admin, err := s.store.GetAdmin(ctx, adminID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return errors.NotFound("Admin", adminID)
		}
		return errors.NewDatabaseError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)); err != nil {
		return errors.Forbidden("Current password is incorrect", "")
	}
	if len(newPassword) < 8 {
		return errors.ValidationFields("Password too short", map[string]string{
			"newPassword": "New password must be at least 8 characters",
		})
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePasswordHash(ctx, admin.ID, hash); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return errors.NotFound("Admin", adminID)
		}
		return errors.NewDatabaseError(err)
	}
	s.log.Infow("Admin password changed", "adminId", admin.ID)
	return nil
}

// SeedAdmin creates the initial administrator unless the account exists.
// An empty email disables seeding.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	if _, err := s.store.GetAdminByEmail(ctx, email); err == nil {
		s.log.Debugw("Admin already present, skipping seed", "email", logger.MaskEmail(email))
		return nil
	} else if !stderrors.Is(err, store.ErrNotFound) {
		return errors.NewDatabaseError(err)
	}

	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	admin, err := s.store.CreateAdmin(ctx, email, hash, types.RoleAdmin)
	if err != nil {
		if stderrors.Is(err, store.ErrConflict) {
			return nil
		}
		return errors.NewDatabaseError(err)
	}
	s.log.Infow("Seeded admin account", "adminId", admin.ID, "email", logger.MaskEmail(email))
	return nil
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, errors.ServerError, "Failed to hash password")
	}
	return string(hash), nil
}
