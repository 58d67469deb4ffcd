package postgres

import (
	"context"
	"time"

	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure FeedbackStore implements store.FeedbackStore
var _ store.FeedbackStore = (*FeedbackStore)(nil)

const feedbackColumns = `id::text, title, email, organization_name, first_name, last_name, phone_number,
		services, individuals, professionalism, response_time, overall_services,
		feedback, custom_responses, recommend, subscribe_newsletter, terms_accepted,
		created_at, updated_at`

// FeedbackStore implements store.FeedbackStore.
type FeedbackStore struct {
	db DBTX
}

// NewFeedbackStore creates a new feedback store backed by db.
func NewFeedbackStore(db DBTX) *FeedbackStore {
	return &FeedbackStore{db: db}
}

// contentArgs returns the positional arguments $1..$16 shared by insert and update.
func contentArgs(c *types.FeedbackContent) ([]any, error) {
	professionalism, err := jsonArg(c.Professionalism)
	if err != nil {
		return nil, err
	}
	responseTime, err := jsonArg(c.ResponseTime)
	if err != nil {
		return nil, err
	}
	overall, err := jsonArg(c.OverallServices)
	if err != nil {
		return nil, err
	}
	custom, err := jsonArg(c.CustomResponses)
	if err != nil {
		return nil, err
	}
	return []any{
		c.Title, c.Email, c.OrganizationName, c.FirstName, c.LastName, c.PhoneNumber,
		textArray(c.Services), textArray(c.Individuals),
		professionalism, responseTime, overall,
		c.Feedback, custom, c.Recommend, c.SubscribeNewsletter, c.TermsAccepted,
	}, nil
}

func scanFeedback(row pgx.Row) (*types.FeedbackRecord, error) {
	var (
		rec                                        types.FeedbackRecord
		professionalism, responseTime, overall, cr []byte
	)
	err := row.Scan(
		&rec.ID, &rec.Title, &rec.Email, &rec.OrganizationName, &rec.FirstName, &rec.LastName, &rec.PhoneNumber,
		&rec.Services, &rec.Individuals, &professionalism, &responseTime, &overall,
		&rec.Feedback, &cr, &rec.Recommend, &rec.SubscribeNewsletter, &rec.TermsAccepted,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{professionalism, &rec.Professionalism},
		{responseTime, &rec.ResponseTime},
		{overall, &rec.OverallServices},
		{cr, &rec.CustomResponses},
	} {
		if err := decodeJSONColumn(col.raw, col.dst); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

func (s *FeedbackStore) queryList(ctx context.Context, op, query string, args ...any) ([]types.FeedbackRecord, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	records := []types.FeedbackRecord{}
	for rows.Next() {
		rec, err := scanFeedback(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return records, nil
}

// CreateFeedback inserts a new feedback record.
func (s *FeedbackStore) CreateFeedback(ctx context.Context, content *types.FeedbackContent) (*types.FeedbackRecord, error) {
	args, err := contentArgs(content)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO feedback (
			title, email, organization_name, first_name, last_name, phone_number,
			services, individuals, professionalism, response_time, overall_services,
			feedback, custom_responses, recommend, subscribe_newsletter, terms_accepted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + feedbackColumns

	rec, err := scanFeedback(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError("create feedback", err)
	}
	return rec, nil
}

// GetFeedback retrieves a record by ID.
func (s *FeedbackStore) GetFeedback(ctx context.Context, id string) (*types.FeedbackRecord, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE id::text = $1`
	rec, err := scanFeedback(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("get feedback", err)
	}
	return rec, nil
}

// GetFeedbackByEmail retrieves the newest record for an email.
func (s *FeedbackStore) GetFeedbackByEmail(ctx context.Context, email string) (*types.FeedbackRecord, error) {
	query := `SELECT ` + feedbackColumns + `
		FROM feedback
		WHERE lower(email) = lower($1)
		ORDER BY created_at DESC
		LIMIT 1`
	rec, err := scanFeedback(s.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapError("get feedback by email", err)
	}
	return rec, nil
}

// ListFeedback returns all records, newest first.
func (s *FeedbackStore) ListFeedback(ctx context.Context) ([]types.FeedbackRecord, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback ORDER BY created_at DESC`
	return s.queryList(ctx, "list feedback", query)
}

// ListFeedbackBetween returns records created in [from, to), newest first.
func (s *FeedbackStore) ListFeedbackBetween(ctx context.Context, from, to time.Time) ([]types.FeedbackRecord, error) {
	query := `SELECT ` + feedbackColumns + `
		FROM feedback
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC`
	return s.queryList(ctx, "list feedback by date", query, from, to)
}

// SuggestEmails returns distinct emails containing partial, case-insensitively,
// in order of first submission.
func (s *FeedbackStore) SuggestEmails(ctx context.Context, partial string, limit int) ([]string, error) {
	query := `
		SELECT email FROM (
			SELECT DISTINCT ON (lower(email)) email, created_at
			FROM feedback
			WHERE strpos(lower(email), lower($1)) > 0
			ORDER BY lower(email), created_at
		) matches
		ORDER BY created_at
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, partial, limit)
	if err != nil {
		return nil, mapError("suggest emails", err)
	}
	defer rows.Close()

	emails := []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, mapError("suggest emails", err)
		}
		emails = append(emails, email)
	}
	return emails, mapError("suggest emails", rows.Err())
}

// UpdateFeedback overwrites every content field of a record.
func (s *FeedbackStore) UpdateFeedback(ctx context.Context, id string, content *types.FeedbackContent) (*types.FeedbackRecord, error) {
	args, err := contentArgs(content)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE feedback SET
			title = $1, email = $2, organization_name = $3, first_name = $4, last_name = $5, phone_number = $6,
			services = $7, individuals = $8, professionalism = $9, response_time = $10, overall_services = $11,
			feedback = $12, custom_responses = $13, recommend = $14, subscribe_newsletter = $15, terms_accepted = $16,
			updated_at = now()
		WHERE id::text = $17
		RETURNING ` + feedbackColumns

	rec, err := scanFeedback(s.db.QueryRow(ctx, query, append(args, id)...))
	if err != nil {
		return nil, mapError("update feedback", err)
	}
	return rec, nil
}

// DeleteFeedback removes a record.
func (s *FeedbackStore) DeleteFeedback(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM feedback WHERE id::text = $1`, id)
	if err != nil {
		return mapError("delete feedback", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete feedback", store.ErrNotFound)
	}
	return nil
}
