package middleware

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

// Keys set by AdminAuth for the authenticated administrator.
const (
	AdminIDKey    contextKey = "admin_id"
	AdminEmailKey contextKey = "admin_email"
	AdminRoleKey  contextKey = "admin_role"
)
