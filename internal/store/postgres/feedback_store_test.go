package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedbackColumnNames = []string{
	"id", "title", "email", "organization_name", "first_name", "last_name", "phone_number",
	"services", "individuals", "professionalism", "response_time", "overall_services",
	"feedback", "custom_responses", "recommend", "subscribe_newsletter", "terms_accepted",
	"created_at", "updated_at",
}

func setupMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func testContent() *types.FeedbackContent {
	return &types.FeedbackContent{
		Title:            "Ms.",
		Email:            "jane@example.com",
		OrganizationName: "Acme",
		FirstName:        "Jane",
		LastName:         "Doe",
		PhoneNumber:      "555-0100",
		Services:         []string{"Tax", "Immigration"},
		Individuals:      []string{"Mona", "Akhila (Paralegal)"},
		Professionalism:  types.RatingMap{}.Set("Mona", 5).Set("Akhila (Paralegal)", 4),
		ResponseTime:     types.RatingMap{}.Set("Mona", 4).Set("Akhila (Paralegal)", 4),
		OverallServices:  types.RatingMap{}.Set("Mona", 3).Set("Akhila (Paralegal)", 5),
		Feedback:         "Mona: great | Akhila (Paralegal): quick",
		CustomResponses:  types.TextMap{}.Set("How did you hear about us?", "A friend"),
		Recommend:        "Yes",
		TermsAccepted:    true,
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func feedbackRow(t *testing.T, rows *pgxmock.Rows, id string, c *types.FeedbackContent, at time.Time) *pgxmock.Rows {
	return rows.AddRow(
		id, c.Title, c.Email, c.OrganizationName, c.FirstName, c.LastName, c.PhoneNumber,
		c.Services, c.Individuals,
		mustJSON(t, c.Professionalism), mustJSON(t, c.ResponseTime), mustJSON(t, c.OverallServices),
		c.Feedback, mustJSON(t, c.CustomResponses), c.Recommend, c.SubscribeNewsletter, c.TermsAccepted,
		at, at,
	)
}

func TestFeedbackStore_CreateAndRoundTrip(t *testing.T) {
	mock := setupMockDB(t)
	s := NewFeedbackStore(mock)
	ctx := context.Background()

	content := testContent()
	id := uuid.NewString()
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO feedback`).
		WithArgs(
			content.Title, content.Email, content.OrganizationName, content.FirstName, content.LastName, content.PhoneNumber,
			content.Services, content.Individuals,
			mustJSON(t, content.Professionalism), mustJSON(t, content.ResponseTime), mustJSON(t, content.OverallServices),
			content.Feedback, mustJSON(t, content.CustomResponses), content.Recommend, content.SubscribeNewsletter, content.TermsAccepted,
		).
		WillReturnRows(feedbackRow(t, pgxmock.NewRows(feedbackColumnNames), id, content, now))

	created, err := s.CreateFeedback(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)

	mock.ExpectQuery(`FROM feedback WHERE id::text = \$1`).
		WithArgs(id).
		WillReturnRows(feedbackRow(t, pgxmock.NewRows(feedbackColumnNames), id, content, now))

	fetched, err := s.GetFeedback(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, content.Services, fetched.Services)
	assert.Equal(t, content.Individuals, fetched.Individuals)
	assert.Equal(t, content.Professionalism, fetched.Professionalism)
	assert.Equal(t, content.ResponseTime, fetched.ResponseTime)
	assert.Equal(t, content.OverallServices, fetched.OverallServices)
	assert.Equal(t, []string{"Mona", "Akhila (Paralegal)"}, fetched.Professionalism.Names())
	assert.Equal(t, content.CustomResponses, fetched.CustomResponses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackStore_CreateNilSlicesBecomeEmptyArrays(t *testing.T) {
	mock := setupMockDB(t)
	s := NewFeedbackStore(mock)

	content := &types.FeedbackContent{Email: "a@b.c", Recommend: "No"}
	mock.ExpectQuery(`INSERT INTO feedback`).
		WithArgs(
			"", "a@b.c", "", "", "", "",
			[]string{}, []string{},
			[]byte("{}"), []byte("{}"), []byte("{}"),
			"", []byte("{}"), "No", "", false,
		).
		WillReturnError(errors.New("stop"))

	_, err := s.CreateFeedback(context.Background(), content)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackStore_GetNotFound(t *testing.T) {
	mock := setupMockDB(t)
	s := NewFeedbackStore(mock)

	mock.ExpectQuery(`FROM feedback WHERE id::text = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetFeedback(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	mock.ExpectQuery(`WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err = s.GetFeedbackByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackStore_ListBetween(t *testing.T) {
	mock := setupMockDB(t)
	s := NewFeedbackStore(mock)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	rows := pgxmock.NewRows(feedbackColumnNames)
	feedbackRow(t, rows, uuid.NewString(), testContent(), from.Add(2*time.Hour))
	feedbackRow(t, rows, uuid.NewString(), testContent(), from.Add(time.Hour))

	mock.ExpectQuery(`WHERE created_at >= \$1 AND created_at < \$2`).
		WithArgs(from, to).
		WillReturnRows(rows)

	records, err := s.ListFeedbackBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackStore_ListEmpty(t *testing.T) {
	mock := setupMockDB(t)
	s := NewFeedbackStore(mock)

	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows(feedbackColumnNames))

	records, err := s.ListFeedback(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFeedbackStore_SuggestEmails(t *testing.T) {
	mock := setupMockDB(t)
	s := NewFeedbackStore(mock)

	mock.ExpectQuery(`strpos\(lower\(email\), lower\(\$1\)\) > 0`).
		WithArgs("exa", 10).
		WillReturnRows(pgxmock.NewRows([]string{"email"}).
			AddRow("jane@example.com").
			AddRow("john@example.com"))

	emails, err := s.SuggestEmails(context.Background(), "exa", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com", "john@example.com"}, emails)
}

func TestFeedbackStore_UpdateAndDelete(t *testing.T) {
	mock := setupMockDB(t)
	s := NewFeedbackStore(mock)
	ctx := context.Background()

	id := uuid.NewString()
	content := testContent()
	content.Individuals = []string{"Former Employee"}

	mock.ExpectQuery(`UPDATE feedback SET`).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), []string{"Former Employee"},
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			id,
		).
		WillReturnRows(feedbackRow(t, pgxmock.NewRows(feedbackColumnNames), id, content, time.Now()))

	updated, err := s.UpdateFeedback(ctx, id, content)
	require.NoError(t, err)
	assert.Equal(t, []string{"Former Employee"}, updated.Individuals)

	mock.ExpectExec(`DELETE FROM feedback`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, s.DeleteFeedback(ctx, id))

	mock.ExpectExec(`DELETE FROM feedback`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, s.DeleteFeedback(ctx, id), store.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("op", nil))
	assert.ErrorIs(t, mapError("op", pgx.ErrNoRows), store.ErrNotFound)
	assert.ErrorIs(t, mapError("op", &pgconn.PgError{Code: "23505"}), store.ErrConflict)

	other := errors.New("connection reset")
	err := mapError("op", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}
