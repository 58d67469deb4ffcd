package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/internal/auth"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// Validator validates a bearer token. *services.AuthService implements it.
type Validator interface {
	ValidateToken(token string) (*auth.AdminClaims, error)
}

// AuthMiddleware requires a valid bearer token and stores the admin's
// identity in the context. Missing or invalid tokens abort with 401.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			_ = c.Error(errors.Unauthorized("missing_token", "Authorization required"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			log.Debugw("Rejected bearer token",
				"error", err,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())

			if stderrors.Is(err, auth.ErrTokenExpired) {
				_ = c.Error(errors.Unauthorized("token_expired", "Your session has expired"))
			} else {
				_ = c.Error(errors.Unauthorized("invalid_token", "Invalid authentication token"))
			}
			c.Abort()
			return
		}

		c.Set(string(AdminIDKey), claims.Subject)
		c.Set(string(AdminEmailKey), claims.Email)
		c.Set(string(AdminRoleKey), claims.Role)
		c.Next()
	}
}

// RequireAdmin must follow AuthMiddleware. Authenticated callers without the
// admin role get 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(string(AdminRoleKey)) != types.RoleAdmin {
			_ = c.Error(errors.Forbidden("access denied", "admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
