package postgres

import (
	"context"

	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Ensure RosterStore implements store.RosterStore
var _ store.RosterStore = (*RosterStore)(nil)

// RosterStore keeps each list as a json array in roster_lists, keyed by list name.
type RosterStore struct {
	db DBTX
}

// NewRosterStore creates a new roster store backed by db.
func NewRosterStore(db DBTX) *RosterStore {
	return &RosterStore{db: db}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// loadLists reads the raw entries of every stored list.
func loadLists(ctx context.Context, q querier) (map[store.ListName][]byte, error) {
	rows, err := q.Query(ctx, `SELECT name, entries FROM roster_lists`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := make(map[store.ListName][]byte)
	for rows.Next() {
		var (
			name    string
			entries []byte
		)
		if err := rows.Scan(&name, &entries); err != nil {
			return nil, err
		}
		lists[store.ListName(name)] = entries
	}
	return lists, rows.Err()
}

func upsertList(ctx context.Context, e execer, name store.ListName, entries any) error {
	raw, err := jsonArg(entries)
	if err != nil {
		return err
	}
	_, err = e.Exec(ctx, `
		INSERT INTO roster_lists (name, entries, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET entries = EXCLUDED.entries, updated_at = now()`,
		string(name), raw)
	return err
}

func decodeStringList(raw []byte) ([]string, error) {
	list := []string{}
	if err := decodeJSONColumn(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetRoster returns every list; a list that was never saved is empty.
func (s *RosterStore) GetRoster(ctx context.Context) (*types.Roster, error) {
	lists, err := loadLists(ctx, s.db)
	if err != nil {
		return nil, mapError("get roster", err)
	}

	roster := &types.Roster{Individuals: []types.Individual{}}
	if err := decodeJSONColumn(lists[store.ListIndividuals], &roster.Individuals); err != nil {
		return nil, err
	}
	for name, dst := range map[store.ListName]*[]string{
		store.ListServices:          &roster.Services,
		store.ListTitleOptions:      &roster.TitleOptions,
		store.ListFeedbackQuestions: &roster.FeedbackQuestions,
		store.ListNewsletterOptions: &roster.NewsletterOptions,
	} {
		list, err := decodeStringList(lists[name])
		if err != nil {
			return nil, err
		}
		*dst = list
	}
	return roster, nil
}

// ReplaceIndividuals replaces the staff list.
func (s *RosterStore) ReplaceIndividuals(ctx context.Context, individuals []types.Individual) error {
	if individuals == nil {
		individuals = []types.Individual{}
	}
	return mapError("replace individuals", upsertList(ctx, s.db, store.ListIndividuals, individuals))
}

// ReplaceList replaces one of the plain string lists.
func (s *RosterStore) ReplaceList(ctx context.Context, name store.ListName, entries []string) error {
	return mapError("replace "+string(name), upsertList(ctx, s.db, name, textArray(entries)))
}
