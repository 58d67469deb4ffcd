package postgres

import (
	"context"

	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure AdminStore implements store.AdminStore
var _ store.AdminStore = (*AdminStore)(nil)

const adminColumns = `id::text, email, password_hash, role, created_at, updated_at`

// AdminStore implements store.AdminStore.
type AdminStore struct {
	db DBTX
}

// NewAdminStore creates a new admin store backed by db.
func NewAdminStore(db DBTX) *AdminStore {
	return &AdminStore{db: db}
}

func scanAdmin(row pgx.Row) (*types.AdminUser, error) {
	var u types.AdminUser
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAdminByEmail looks an administrator up by email, case-insensitively.
func (s *AdminStore) GetAdminByEmail(ctx context.Context, email string) (*types.AdminUser, error) {
	u, err := scanAdmin(s.db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admin_users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, mapError("get admin by email", err)
	}
	return u, nil
}

// GetAdmin retrieves an administrator by ID.
func (s *AdminStore) GetAdmin(ctx context.Context, id string) (*types.AdminUser, error) {
	u, err := scanAdmin(s.db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admin_users WHERE id::text = $1`, id))
	if err != nil {
		return nil, mapError("get admin", err)
	}
	return u, nil
}

// CreateAdmin inserts an administrator.
func (s *AdminStore) CreateAdmin(ctx context.Context, email, passwordHash, role string) (*types.AdminUser, error) {
	u, err := scanAdmin(s.db.QueryRow(ctx, `
		INSERT INTO admin_users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING `+adminColumns, email, passwordHash, role))
	if err != nil {
		return nil, mapError("create admin", err)
	}
	return u, nil
}

// UpdatePasswordHash replaces an administrator's password hash.
func (s *AdminStore) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE admin_users SET password_hash = $1, updated_at = now() WHERE id::text = $2`,
		passwordHash, id)
	if err != nil {
		return mapError("update admin password", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update admin password", store.ErrNotFound)
	}
	return nil
}
